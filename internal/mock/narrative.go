package mock

import (
	"fmt"
	"strings"

	"github.com/studiowebux/policyctl/internal/types"
)

// narrative builds the default markdown answer for a request
func narrative(mode types.Mode, req types.AnalysisRequest) string {
	products := DetectProducts(req.Policy)
	productList := "no known product"
	if len(products) > 0 {
		productList = strings.Join(products, ", ")
	}

	var b strings.Builder
	switch mode {
	case types.ModeTranslate:
		b.WriteString("## Policy summary\n\n")
		fmt.Fprintf(&b, "- Input: %s, %d characters\n", InputKind(req.Policy), len(req.Policy))
		fmt.Fprintf(&b, "- Products: %s\n\n", productList)
		b.WriteString("Each section is described in plain language below.\n")
		for _, p := range products {
			fmt.Fprintf(&b, "\n### %s\n\nSettings for %s were found and applied as written.\n", p, p)
		}
	case types.ModeSimulate:
		b.WriteString("## Simulation\n\n")
		fmt.Fprintf(&b, "> %s\n\n", req.Query)
		fmt.Fprintf(&b, "Evaluated against %s.\n\n", productList)
		b.WriteString("| Step | Result |\n|---|---|\n")
		b.WriteString("| Policy lookup | matched |\n| Decision | allowed with audit |\n")
	case types.ModeDiagnose:
		b.WriteString("## Diagnosis\n\n")
		fmt.Fprintf(&b, "- Products checked: %s\n", productList)
		if len(products) < 2 {
			b.WriteString("- No cross-product conflicts possible with a single product\n")
		} else {
			fmt.Fprintf(&b, "- %d product pairs checked for conflicts\n", len(products)*(len(products)-1)/2)
		}
		b.WriteString("\n**Health score:** 82/100\n")
	}
	return b.String()
}
