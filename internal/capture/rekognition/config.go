package rekognition

// Config holds AWS Rekognition settings for the capture provider.
type Config struct {
	// Region is the AWS region the Rekognition client talks to.
	Region string

	// MinConfidence is the minimum face-detection confidence (0-100) below
	// which a detection is treated as no face.
	MinConfidence float64
}

// DefaultConfig returns sensible defaults for face capture.
func DefaultConfig(region string) Config {
	return Config{
		Region:        region,
		MinConfidence: 90,
	}
}
