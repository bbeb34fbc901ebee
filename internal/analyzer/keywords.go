package analyzer

import "github.com/seoforge/query-fanout/internal/models"

// DefaultLanguage is used whenever a caller asks for a language that has no
// keyword table.
const DefaultLanguage = "en"

type intentGroup struct {
	intent   models.IntentType
	keywords []string
}

type categoryGroup struct {
	category models.Category
	keywords []string
}

// languageTable bundles every per-language keyword list in one place so a
// new language is a single table entry rather than edits across classifiers.
type languageTable struct {
	intents    []intentGroup
	categories []categoryGroup
	samples    []string
}

// Intent groups are ordered by priority: the first group with a matching
// keyword wins. Category groups are ordered by declaration, first match wins.
var languages = map[string]languageTable{
	"en": {
		intents: []intentGroup{
			{models.IntentInformational, []string{"what", "how", "why", "when", "where", "definition", "meaning", "guide"}},
			{models.IntentTransactional, []string{"buy", "purchase", "order", "price", "cost", "cheap", "deal", "discount"}},
			{models.IntentNavigational, []string{"website", "login", "official", "homepage"}},
			{models.IntentCommercialInvestigation, []string{"best", "top", "review", "comparison", "vs", "alternative"}},
		},
		categories: []categoryGroup{
			{models.CategoryTechnology, []string{"tech", "software", "app", "computer", "phone", "laptop", "ai", "digital"}},
			{models.CategoryEcommerce, []string{"buy", "shop", "store", "product", "brand", "price"}},
			{models.CategoryHealth, []string{"health", "medical", "doctor", "treatment", "symptoms", "disease"}},
			{models.CategoryEducation, []string{"learn", "course", "school", "university", "study", "tutorial"}},
			{models.CategoryTravel, []string{"travel", "hotel", "flight", "vacation", "trip", "destination"}},
			{models.CategoryFood, []string{"recipe", "restaurant", "food", "cooking", "meal", "diet"}},
			{models.CategoryFinance, []string{"money", "investment", "bank", "loan", "insurance", "financial"}},
		},
		samples: []string{
			"best laptops 2024",
			"how to lose weight fast",
			"iPhone 15 vs Samsung Galaxy S24",
			"digital marketing course online",
			"Tesla Model 3 price",
			"restaurants near me",
			"investment strategies 2024",
			"best travel destinations Europe",
		},
	},
	"es": {
		intents: []intentGroup{
			{models.IntentInformational, []string{"qué", "cómo", "por qué", "cuándo", "dónde", "definición", "significado", "guía"}},
			{models.IntentTransactional, []string{"comprar", "compra", "pedir", "precio", "costo", "barato", "oferta", "descuento"}},
			{models.IntentNavigational, []string{"sitio web", "página", "oficial", "inicio"}},
			{models.IntentCommercialInvestigation, []string{"mejor", "mejores", "reseña", "comparación", "vs", "alternativa"}},
		},
		categories: []categoryGroup{
			{models.CategoryTechnology, []string{"tecnología", "software", "app", "ordenador", "teléfono", "portátil", "ia", "digital"}},
			{models.CategoryEcommerce, []string{"comprar", "tienda", "producto", "marca", "precio"}},
			{models.CategoryHealth, []string{"salud", "médico", "doctor", "tratamiento", "síntomas", "enfermedad"}},
			{models.CategoryEducation, []string{"aprender", "curso", "escuela", "universidad", "estudiar", "tutorial"}},
			{models.CategoryTravel, []string{"viajar", "hotel", "vuelo", "vacaciones", "viaje", "destino"}},
			{models.CategoryFood, []string{"receta", "restaurante", "comida", "cocinar", "dieta"}},
			{models.CategoryFinance, []string{"dinero", "inversión", "banco", "préstamo", "seguro", "financiero"}},
		},
		samples: []string{
			"mejores portátiles 2024",
			"cómo perder peso rápido",
			"iPhone 15 vs Samsung Galaxy S24",
			"curso de marketing digital online",
			"precio Tesla Model 3",
			"restaurantes cerca de mí",
			"estrategias de inversión 2024",
			"mejores destinos de viaje Europa",
		},
	},
	"fr": {
		intents: []intentGroup{
			{models.IntentInformational, []string{"quoi", "comment", "pourquoi", "quand", "où", "définition", "signification", "guide"}},
			{models.IntentTransactional, []string{"acheter", "achat", "commander", "prix", "coût", "pas cher", "offre", "remise"}},
			{models.IntentNavigational, []string{"site web", "connexion", "officiel", "accueil"}},
			{models.IntentCommercialInvestigation, []string{"meilleur", "top", "avis", "comparaison", "vs", "alternative"}},
		},
		categories: []categoryGroup{
			{models.CategoryTechnology, []string{"technologie", "logiciel", "app", "ordinateur", "téléphone", "portable", "ia", "numérique"}},
			{models.CategoryEcommerce, []string{"acheter", "magasin", "produit", "marque", "prix"}},
			{models.CategoryHealth, []string{"santé", "médical", "docteur", "traitement", "symptômes", "maladie"}},
			{models.CategoryEducation, []string{"apprendre", "cours", "école", "université", "étudier", "tutoriel"}},
			{models.CategoryTravel, []string{"voyager", "hôtel", "vol", "vacances", "voyage", "destination"}},
			{models.CategoryFood, []string{"recette", "restaurant", "nourriture", "cuisiner", "repas", "régime"}},
			{models.CategoryFinance, []string{"argent", "investissement", "banque", "prêt", "assurance", "financier"}},
		},
		samples: []string{
			"meilleurs ordinateurs portables 2024",
			"comment perdre du poids rapidement",
			"iPhone 15 vs Samsung Galaxy S24",
			"cours de marketing numérique en ligne",
			"prix Tesla Model 3",
			"restaurants près de moi",
			"stratégies d'investissement 2024",
			"meilleures destinations de voyage Europe",
		},
	},
	"de": {
		intents: []intentGroup{
			{models.IntentInformational, []string{"was", "wie", "warum", "wann", "wo", "definition", "bedeutung", "anleitung"}},
			{models.IntentTransactional, []string{"kaufen", "kauf", "bestellen", "preis", "kosten", "günstig", "angebot", "rabatt"}},
			{models.IntentNavigational, []string{"website", "anmeldung", "offiziell", "startseite"}},
			{models.IntentCommercialInvestigation, []string{"beste", "top", "bewertung", "vergleich", "vs", "alternative"}},
		},
		categories: []categoryGroup{
			{models.CategoryTechnology, []string{"technologie", "software", "app", "computer", "telefon", "laptop", "ki", "digital"}},
			{models.CategoryEcommerce, []string{"kaufen", "geschäft", "produkt", "marke", "preis"}},
			{models.CategoryHealth, []string{"gesundheit", "medizinisch", "arzt", "behandlung", "symptome", "krankheit"}},
			{models.CategoryEducation, []string{"lernen", "kurs", "schule", "universität", "studieren", "tutorial"}},
			{models.CategoryTravel, []string{"reisen", "hotel", "flug", "urlaub", "reise", "ziel"}},
			{models.CategoryFood, []string{"rezept", "restaurant", "essen", "kochen", "mahlzeit", "diät"}},
			{models.CategoryFinance, []string{"geld", "investition", "bank", "kredit", "versicherung", "finanziell"}},
		},
		samples: []string{
			"beste Laptops 2024",
			"wie man schnell abnimmt",
			"iPhone 15 vs Samsung Galaxy S24",
			"digitaler Marketing-Kurs online",
			"Tesla Model 3 Preis",
			"Restaurants in meiner Nähe",
			"Investmentstrategien 2024",
			"beste Reiseziele Europa",
		},
	},
	"it": {
		intents: []intentGroup{
			{models.IntentInformational, []string{"cosa", "come", "perché", "quando", "dove", "definizione", "significato", "guida"}},
			{models.IntentTransactional, []string{"comprare", "acquisto", "ordinare", "prezzo", "costo", "economico", "offerta", "sconto"}},
			{models.IntentNavigational, []string{"sito web", "login", "ufficiale", "homepage"}},
			{models.IntentCommercialInvestigation, []string{"migliore", "top", "recensione", "confronto", "vs", "alternativa"}},
		},
		categories: []categoryGroup{
			{models.CategoryTechnology, []string{"tecnologia", "software", "app", "computer", "telefono", "laptop", "ia", "digitale"}},
			{models.CategoryEcommerce, []string{"comprare", "negozio", "prodotto", "marca", "prezzo"}},
			{models.CategoryHealth, []string{"salute", "medico", "dottore", "trattamento", "sintomi", "malattia"}},
			{models.CategoryEducation, []string{"imparare", "corso", "scuola", "università", "studiare", "tutorial"}},
			{models.CategoryTravel, []string{"viaggiare", "hotel", "volo", "vacanze", "viaggio", "destinazione"}},
			{models.CategoryFood, []string{"ricetta", "ristorante", "cibo", "cucinare", "pasto", "dieta"}},
			{models.CategoryFinance, []string{"denaro", "investimento", "banca", "prestito", "assicurazione", "finanziario"}},
		},
		samples: []string{
			"migliori laptop 2024",
			"come perdere peso velocemente",
			"iPhone 15 vs Samsung Galaxy S24",
			"corso di marketing digitale online",
			"prezzo Tesla Model 3",
			"ristoranti vicino a me",
			"strategie di investimento 2024",
			"migliori destinazioni di viaggio Europa",
		},
	},
}

// supportedOrder keeps listings stable; map iteration order would leak into
// API responses otherwise.
var supportedOrder = []string{"en", "es", "fr", "de", "it"}

func IsSupported(language string) bool {
	_, ok := languages[language]
	return ok
}

func SupportedLanguages() []string {
	out := make([]string, len(supportedOrder))
	copy(out, supportedOrder)
	return out
}

// Samples returns the per-language example queries shipped with the engine.
func Samples(language string) []string {
	table, ok := languages[language]
	if !ok {
		table = languages[DefaultLanguage]
	}
	out := make([]string, len(table.samples))
	copy(out, table.samples)
	return out
}
