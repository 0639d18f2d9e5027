// Package atlas is the runtime side of the asset pipeline: it loads a
// finished atlas descriptor with its page images and answers identifier
// lookups.
//
// A loaded Atlas is immutable. Lookup and the other accessors are safe for
// concurrent use without locking. To pick up a newer build, load the
// descriptor again and swap the *Atlas; a Loader reuses decoded pages whose
// files did not change.
//
//	a, err := atlas.Load("build/atlas.json")
//	if err != nil {
//		return err
//	}
//	page, uv, err := a.Lookup("ui/button.png")
package atlas
