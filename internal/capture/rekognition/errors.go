package rekognition

import "errors"

var (
	// ErrNoFaceDetected indicates that no face was found in the provided frame
	ErrNoFaceDetected = errors.New("no face detected in frame")

	// ErrMultipleFaces indicates that multiple faces were detected when only one was expected
	ErrMultipleFaces = errors.New("multiple faces detected in frame")

	// ErrLowConfidence indicates the detection confidence was below the configured minimum
	ErrLowConfidence = errors.New("face detection confidence too low")

	// ErrMissingFrame indicates the capture request carried no image bytes
	ErrMissingFrame = errors.New("rekognition capture requires a frame")

	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")
)
