package model

import "time"

type ProductDetails struct {
	Name     string `json:"name" firestore:"name"`
	Brand    string `json:"brand" firestore:"brand"`
	Category string `json:"category" firestore:"category"`
}

type Ingredient struct {
	Name         string       `json:"name" firestore:"name"`
	Function     string       `json:"function" firestore:"function"`
	Benefits     string       `json:"benefits" firestore:"benefits"`
	SideEffects  string       `json:"sideEffects" firestore:"sideEffects"`
	SafetyRating SafetyRating `json:"safetyRating" firestore:"safetyRating"`
	Quantity     *string      `json:"quantity,omitempty" firestore:"quantity,omitempty"`
}

type SafetyAssessment struct {
	OverallRating SafetyRating `json:"overallRating" firestore:"overallRating"`
	Warnings      string       `json:"warnings" firestore:"warnings"`
}

type UserSentimentAnalysis struct {
	Pros          string `json:"pros" firestore:"pros"`
	Cons          string `json:"cons" firestore:"cons"`
	ReviewSummary string `json:"reviewSummary" firestore:"reviewSummary"`
}

// AnalysisResult is the validated output of a product image extraction.
// IngredientAnalysis is ordered from highest to lowest concentration.
type AnalysisResult struct {
	ProductDetails        ProductDetails        `json:"productDetails" firestore:"productDetails"`
	IngredientAnalysis    []Ingredient          `json:"ingredientAnalysis" firestore:"ingredientAnalysis"`
	SafetyAssessment      SafetyAssessment      `json:"safetyAssessment" firestore:"safetyAssessment"`
	UserSentimentAnalysis UserSentimentAnalysis `json:"userSentimentAnalysis" firestore:"userSentimentAnalysis"`
	UsageInstructions     string                `json:"usageInstructions" firestore:"usageInstructions"`
	ExpiryInformation     string                `json:"expiryInformation" firestore:"expiryInformation"`
	Recommendations       string                `json:"recommendations" firestore:"recommendations"`
}

// ProductRecord is a persisted analysis. Id is assigned by the store and is not
// part of the stored document.
type ProductRecord struct {
	Id string `json:"id" firestore:"-"`
	AnalysisResult
	Image     string    `json:"image" firestore:"image"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

func NewProductRecord(result AnalysisResult, image string, createdAt time.Time) ProductRecord {
	if result.IngredientAnalysis == nil {
		result.IngredientAnalysis = []Ingredient{}
	}
	return ProductRecord{
		AnalysisResult: result,
		Image:          image,
		CreatedAt:      createdAt.UTC(),
	}
}
