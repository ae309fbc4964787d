package domain

type GenerationSource int

const (
	SourceModel GenerationSource = iota
	SourceFallback
)

func (s GenerationSource) String() string {
	switch s {
	case SourceModel:
		return "model"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Generation is the outcome of a text generation call. Text is always set:
// it holds either the model output or the prompt's fallback text.
type Generation struct {
	Text   string
	Source GenerationSource
}

func Generated(text string) Generation {
	return Generation{Text: text, Source: SourceModel}
}

func Fallback(text string) Generation {
	return Generation{Text: text, Source: SourceFallback}
}

func (g Generation) IsFallback() bool {
	return g.Source == SourceFallback
}
