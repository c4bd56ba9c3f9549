package schema

import "go-product-insight/internal/model"

var ratings = model.SafetyRatingValues()

// AnalysisResultContract is the shape every product analysis must satisfy.
var AnalysisResultContract = Obj("", "Structured analysis of a consumer product photographed by the user.",
	Obj("productDetails", "Identification of the product.",
		Str("name", "The name of the product."),
		Str("brand", "The brand of the product."),
		Str("category", "The category of the product."),
	),
	ArrayOf("ingredientAnalysis", "A list of ingredients found in the product, sorted from highest to lowest quantity.",
		Obj("", "One ingredient.",
			Str("name", "The name of the ingredient."),
			Str("function", "The function of the ingredient in the product."),
			Str("benefits", "The benefits of the ingredient."),
			Str("sideEffects", "Potential side effects of the ingredient."),
			EnumOf("safetyRating", "Safety rating of the ingredient.", ratings...),
			OptionalStr("quantity", `The quantity or concentration of the ingredient, if available (e.g., "10%").`),
		),
	),
	Obj("safetyAssessment", "Overall safety evaluation.",
		EnumOf("overallRating", "Overall safety rating of the product.", ratings...),
		Str("warnings", "Important safety warnings for the product."),
	),
	Obj("userSentimentAnalysis", "Sentiment of users towards the product.",
		Str("pros", "AI-generated pros of the product."),
		Str("cons", "AI-generated cons of the product."),
		Str("reviewSummary", "Comprehensive summary of user reviews."),
	),
	Str("usageInstructions", "Instructions on how to properly use the product."),
	Str("expiryInformation", "Expiry date and time remaining, if available."),
	Str("recommendations", "Recommendations on who should or should not use the product."),
)

type ReviewSummary struct {
	Summary string `json:"summary"`
}

var ReviewSummaryContract = Obj("", "Summary of user reviews.",
	Str("summary", "A summary of the user reviews."),
)
