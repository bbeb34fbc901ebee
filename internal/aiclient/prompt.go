package aiclient

import (
	"fmt"

	"github.com/seoforge/query-fanout/internal/models"
)

const systemPrompt = "You are an expert SEO and query analysis specialist."

// promptInstructions carries the per-language sentences embedded in the
// user prompt so the model answers in the query's language.
type promptInstructions struct {
	Instruction string
	Format      string
	Context     string
}

var promptsByLanguage = map[string]promptInstructions{
	"en": {
		Instruction: "Generate realistic sub-queries that Google's AI would create for this main query",
		Format:      "Return JSON format with sub-queries, probabilities, facets, and reasoning",
		Context:     "You are an expert SEO analyzing Google's query fan-out behavior",
	},
	"es": {
		Instruction: "Genera sub-consultas realistas que la IA de Google crearía para esta consulta principal",
		Format:      "Devuelve formato JSON con sub-consultas, probabilidades, facetas y razonamiento",
		Context:     "Eres un experto en SEO analizando el comportamiento de expansión de consultas de Google",
	},
	"fr": {
		Instruction: "Générez des sous-requêtes réalistes que l'IA de Google créerait pour cette requête principale",
		Format:      "Retournez au format JSON avec sous-requêtes, probabilités, facettes et raisonnement",
		Context:     "Vous êtes un expert SEO analysant le comportement d'expansion de requêtes de Google",
	},
	"de": {
		Instruction: "Generieren Sie realistische Unter-Abfragen, die Googles KI für diese Hauptabfrage erstellen würde",
		Format:      "Geben Sie JSON-Format mit Unter-Abfragen, Wahrscheinlichkeiten, Facetten und Begründung zurück",
		Context:     "Sie sind ein SEO-Experte, der Googles Query-Fan-Out-Verhalten analysiert",
	},
	"it": {
		Instruction: "Genera sotto-query realistiche che l'IA di Google creerebbe per questa query principale",
		Format:      "Restituisci formato JSON con sotto-query, probabilità, faccette e ragionamento",
		Context:     "Sei un esperto SEO che analizza il comportamento di espansione delle query di Google",
	},
}

const userPromptTemplate = `%s.

%s: "%s"

Query Analysis:
- Intent: %s
- Category: %s
- Commercial Intent: %.0f%%
- Language: %s

Generate %d realistic sub-queries that represent how Google's AI Mode would expand this query. Consider:

1. **Intent-based variations**: Based on user search intent
2. **Entity-specific queries**: Focusing on key entities in the original query
3. **Contextual extensions**: Industry/category-specific variations
4. **Competitive analysis**: Market research variations
5. **User journey stages**: Different stages of user decision process

%s:

{
  "predictions": [
    {
      "sub_query": "exact sub-query text in %s",
      "probability": 0.85,
      "facet": "category name",
      "intent_type": "informational|transactional|navigational|commercial_investigation",
      "reasoning": "brief explanation why this sub-query would be generated"
    }
  ],
  "analysis_summary": "brief summary of the fan-out strategy used"
}

Important: Generate sub-queries in %s language that are natural and realistic for %s-speaking users.`

// BuildPrompt renders the user message for the remote model. Unsupported
// language codes get English instructions but keep the requested code in
// the language hints.
func BuildPrompt(query string, summary models.AnalysisSummary, language string, maxPredictions int) string {
	instructions, ok := promptsByLanguage[language]
	if !ok {
		instructions = promptsByLanguage["en"]
	}

	intent := summary.IntentType
	if intent == "" {
		intent = "unknown"
	}
	category := summary.Category
	if category == "" {
		category = models.CategoryGeneral
	}

	return fmt.Sprintf(userPromptTemplate,
		instructions.Context,
		instructions.Instruction,
		query,
		intent,
		category,
		summary.CommercialIntent*100,
		language,
		maxPredictions,
		instructions.Format,
		language,
		language,
		language,
	)
}
