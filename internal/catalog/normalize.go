package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// sizeVariant describes one of the three bakery size options.
type sizeVariant struct {
	id         string
	size       string
	multiplier float64
}

// Bakery products come in three sizes; everything else is a single standard
// portion. Variant prices and weights are the base values scaled by the
// multiplier and rounded to the nearest ruble / gram.
var sizeVariants = []sizeVariant{
	{id: "small", size: "Маленький", multiplier: 1.0},
	{id: "medium", size: "Средний", multiplier: 1.5},
	{id: "large", size: "Большой", multiplier: 2.0},
}

// names maps the upstream English product names to the display names.
// Unknown names pass through unchanged.
var names = map[string]string{
	"Cheburek with meat":     "Чебурек с мясом",
	"Cheburek with cheese":   "Чебурек с сыром",
	"Cheburek with potatoes": "Чебурек с картошкой",
	"Samsa with chicken":     "Самса с курицей",
	"Pizza Margherita":       "Пицца Маргарита",
	"Greek salad":            "Греческий салат",
	"Coffee Latte":           "Кофе Латте",
	"Black tea":              "Черный чай",
	"Orange juice":           "Апельсиновый сок",
}

// categories maps upstream category codes to display categories.
// Unknown codes pass through unchanged.
var categories = map[string]string{
	"Bakery": "Выпечка",
	"Pizza":  "Пицца",
	"Salads": "Салаты",
	"Drinks": "Напитки",
}

// descriptions maps display names to menu descriptions. Products without a
// curated description get a generated one.
var descriptions = map[string]string{
	"Чебурек с мясом":     "Сочный чебурек с начинкой из отборной говядины, лука и специй. Хрустящее тесто и ароматная начинка.",
	"Чебурек с сыром":     "Нежный чебурек с сырной начинкой. Идеальное сочетание хрустящего теста и тягучего сыра.",
	"Чебурек с картошкой": "Вегетарианский чебурек с картофельной начинкой, зеленью и специями. Питательно и вкусно.",
	"Самса с курицей":     "Ароматная самса с куриной начинкой и специями.",
	"Пицца Маргарита":     "Классическая итальянская пицца с томатным соусом, моцареллой и базиликом.",
	"Греческий салат":     "Свежий салат с огурцами, помидорами, оливками, сыром фета и оливковым маслом.",
	"Кофе Латте":          "Нежный кофе с молочной пенкой.",
	"Черный чай":          "Ароматный черный чай.",
	"Апельсиновый сок":    "Свежевыжатый апельсиновый сок.",
}

// images maps upstream English names to bundled image paths.
var images = map[string]string{
	"Cheburek with meat":     "/images/cheburek-with-meat.jpg",
	"Cheburek with cheese":   "/images/cheburek-with-cheese.jpg",
	"Cheburek with potatoes": "/images/cheburek-with-potatoes.jpg",
	"Samsa with chicken":     "/images/samsa-with-chicken.jpg",
	"Pizza Margherita":       "/images/pizza-margherita.jpg",
	"Greek salad":            "/images/greek-salad.jpg",
	"Coffee Latte":           "/images/coffee-latte.jpg",
	"Black tea":              "/images/black-tea.jpg",
	"Orange juice":           "/images/orange-juice.jpg",
}

var placeholderImages = []string{
	"/images/cheburek-with-meat.jpg",
	"/images/cheburek-with-cheese.jpg",
	"/images/cheburek-with-potatoes.jpg",
	"/images/samsa-with-chicken.jpg",
	"/images/pizza-margherita.jpg",
	"/images/greek-salad.jpg",
	"/images/coffee-latte.jpg",
	"/images/black-tea.jpg",
	"/images/orange-juice.jpg",
}

// categoryDefaults back-fills calories and weight the upstream API does not
// report, keyed by the upstream category code.
func categoryDefaults(category string) (calories, weight int) {
	switch category {
	case "Bakery":
		return 400, 150
	case "Pizza":
		return 800, 350
	case "Salads":
		return 250, 200
	case "Drinks":
		return 100, 300
	default:
		return 300, 150
	}
}

// Normalize maps one raw upstream record into the canonical product shape.
// index is the record's position in the upstream list; it seeds defaults for
// records with missing fields.
func Normalize(rec Record, index int) Product {
	englishName := rec.Name
	if englishName == "" {
		englishName = fmt.Sprintf("Product %d", index+1)
	}
	name := englishName
	if ru, ok := names[englishName]; ok {
		name = ru
	}

	englishCategory := rec.Category
	if englishCategory == "" {
		englishCategory = "Bakery"
	}
	category := englishCategory
	if ru, ok := categories[englishCategory]; ok {
		category = ru
	}

	calories, weight := categoryDefaults(englishCategory)

	price := rec.Price
	if price.IsZero() {
		price = decimal.NewFromInt(100)
	}

	description, ok := descriptions[name]
	if !ok {
		description = fmt.Sprintf("Вкусный %s из категории %s.", strings.ToLower(name), category)
	}

	image, ok := images[englishName]
	if !ok {
		image = placeholderImages[index%len(placeholderImages)]
	}

	id := rec.ID
	if id == "" {
		id = strconv.Itoa(index + 1)
	}

	return Product{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		Calories:    calories,
		Weight:      weight,
		Available:   true,
		Rating:      4.5,
		Image:       image,
		Variants:    buildVariants(englishCategory, price, weight),
	}
}

// buildVariants derives the size options for a product. Only bakery products
// come in multiple sizes.
func buildVariants(englishCategory string, basePrice decimal.Decimal, baseWeight int) []Variant {
	if englishCategory != "Bakery" {
		return []Variant{{
			ID:     "standard",
			Size:   "Стандартный",
			Price:  basePrice,
			Weight: baseWeight,
		}}
	}

	variants := make([]Variant, len(sizeVariants))
	for i, sv := range sizeVariants {
		m := decimal.NewFromFloat(sv.multiplier)
		variants[i] = Variant{
			ID:     sv.id,
			Size:   sv.size,
			Price:  basePrice.Mul(m).Round(0),
			Weight: int(decimal.NewFromInt(int64(baseWeight)).Mul(m).Round(0).IntPart()),
		}
	}
	return variants
}
