package domain

// PhotoCandidate is one image observed on a performer profile page.
// Computed fresh on every visit, never cached across runs.
type PhotoCandidate struct {
	Src    string
	Alt    string
	Width  int
	Height int
}

// SelectedImage is the winning headshot candidate for a performer,
// together with the stable identity key used as the on-disk file name.
type SelectedImage struct {
	Src         string
	IdentityKey string
}
