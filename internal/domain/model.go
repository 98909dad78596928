package domain

type AIModel struct {
	ID            string
	OwnedBy       string
	ContextWindow int
	Active        bool
}
