package loam

// DocumentKind marks the files written by Store.
const DocumentKind = "mathspan/document"

// DocumentMetadata is the frontmatter of a stored document.
type DocumentMetadata struct {
	ID         string `json:"id" mapstructure:"id"`
	Kind       string `json:"kind" mapstructure:"kind"`
	MathNodes  int    `json:"math_nodes" mapstructure:"math_nodes"`
	APIVersion []int  `json:"api_version" mapstructure:"api_version"`
}
