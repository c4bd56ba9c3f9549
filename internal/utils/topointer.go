package utils

func BoolToPointer(b bool) *bool {
	return &b
}

func Float32ToPointer(f float32) *float32 {
	return &f
}
