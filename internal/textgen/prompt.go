package textgen

import (
	"bytes"
	"fmt"
	"text/template"
)

// Prompt is a named template plus the text shown when generation fails.
type Prompt struct {
	Name     string
	Template *template.Template
	Fallback string
}

func NewPrompt(name, text, fallback string) Prompt {
	return Prompt{
		Name:     name,
		Template: template.Must(template.New(name).Option("missingkey=zero").Parse(text)),
		Fallback: fallback,
	}
}

// Render substitutes params into the template. Values are used verbatim.
func (p Prompt) Render(params any) (string, error) {
	var buf bytes.Buffer
	if err := p.Template.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("template[%s].Execute: %w", p.Name, err)
	}
	return buf.String(), nil
}

const (
	SloganFallback = "Calidad y estilo en cada prenda."
	SizeFallback   = "No se pudo generar una recomendación de talla en este momento. Por favor, intente de nuevo más tarde."
)

type SloganParams struct {
	ProductName string
}

type SizeParams struct {
	Height    string // cm
	Weight    string // kg
	BodyShape string
}

var (
	SloganPrompt = NewPrompt("slogan",
		`Crea un eslogan corto y llamativo de 10 palabras o menos para el producto de ropa: "{{.ProductName}}".`,
		SloganFallback)

	SizePrompt = NewPrompt("size",
		`Basado en los siguientes datos: Altura: {{.Height}} cm, Peso: {{.Weight}} kg, Forma del cuerpo: {{.BodyShape}}, `+
			`por favor, recomienda una talla de ropa (ej. S, M, L, XL) y justifica brevemente tu recomendación en una sola frase. `+
			`El resultado debe ser solo la talla recomendada y la justificación.`,
		SizeFallback)
)
