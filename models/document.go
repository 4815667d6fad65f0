package models

// CodeBlock is one code sample lifted out of a page. Content is preserved
// byte-for-byte through normalization.
type CodeBlock struct {
	Filename string `yaml:"filename,omitempty"`
	Language string `yaml:"language,omitempty"`
	Content  string `yaml:"content"`
}

// ExtractedContent is the structured result of extraction: the content
// region of a page with boilerplate already removed.
type ExtractedContent struct {
	Item     SourceItem
	Title    string
	Prose    []string // paragraphs / prose blocks in document order
	BodyHTML string   // cleaned content-region HTML, empty for doc sources
	Code     []CodeBlock
}

// NormalizedDocument is the final text ready for persistence.
type NormalizedDocument struct {
	Item     SourceItem
	Body     string // pure function of ExtractedContent + output mode
	Language string // ISO 639-1 guess for the prose, empty if undetected
}
