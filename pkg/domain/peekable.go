package domain

type PeekParams struct {
	PeekableType IntegrationPeekableType
	PayloadJSON  []byte
	Path         string
	WorkspaceID  string
}

type PeekResult struct {
	Result []PeekResultItem `json:"result,omitempty"`
}

type PeekResultItem struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Content string `json:"content,omitempty"`
}
