// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/json"

	"go-product-insight/internal/model"
)

// JPEG is the smallest byte sequence recognised as image/jpeg by content sniffing.
var JPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// PNG is a PNG signature followed by padding.
var PNG = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

func JPEGDataURI() string {
	return model.EncodeDataURI("image/jpeg", JPEG)
}

func Request(filename string) model.AnalysisRequest {
	return model.AnalysisRequest{Image: JPEGDataURI(), Filename: filename}
}

// AnalysisResult returns a conforming analysis named after the given product.
func AnalysisResult(name string) model.AnalysisResult {
	quantity := "5%"
	return model.AnalysisResult{
		ProductDetails: model.ProductDetails{Name: name, Brand: "Acme", Category: "Skincare"},
		IngredientAnalysis: []model.Ingredient{
			{Name: "Aqua", Function: "Solvent", Benefits: "Base", SideEffects: "None", SafetyRating: model.Safe},
			{Name: "Niacinamide", Function: "Active", Benefits: "Brightening", SideEffects: "Flushing", SafetyRating: model.Caution, Quantity: &quantity},
		},
		SafetyAssessment:      model.SafetyAssessment{OverallRating: model.Safe, Warnings: "Avoid eyes."},
		UserSentimentAnalysis: model.UserSentimentAnalysis{Pros: "Light", Cons: "Pricey", ReviewSummary: "Liked."},
		UsageInstructions:     "Apply twice daily.",
		ExpiryInformation:     "Unknown",
		Recommendations:       "Most skin types.",
	}
}

// AnalysisJSON is AnalysisResult encoded as a model would return it.
func AnalysisJSON(name string) []byte {
	b, err := json.Marshal(AnalysisResult(name))
	if err != nil {
		panic(err)
	}
	return b
}

// AnalysisJSONWithout encodes AnalysisResult with the given top-level field removed.
func AnalysisJSONWithout(name, field string) []byte {
	var doc map[string]any
	if err := json.Unmarshal(AnalysisJSON(name), &doc); err != nil {
		panic(err)
	}
	delete(doc, field)
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return b
}
