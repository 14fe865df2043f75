package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidParameter = "InvalidParameterException"
	errCodeImageTooLarge    = "ImageTooLargeException"
	errCodeInvalidImage     = "InvalidImageFormatException"
)

// detectAPI is the slice of the Rekognition API the provider uses; it exists
// so tests can substitute a fake client.
type detectAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Client wraps the AWS Rekognition client used for face analysis.
type Client struct {
	api    detectAPI
	config Config
}

// NewClient creates a Rekognition client using the AWS default credential
// chain.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Client{
		api:    rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// DetectFaces runs face detection with full attributes on the frame.
func (c *Client) DetectFaces(ctx context.Context, frame []byte) ([]types.FaceDetail, error) {
	input := &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: frame},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := c.api.DetectFaces(ctx, input)
	if err != nil {
		return nil, parseDetectError(err)
	}

	return output.FaceDetails, nil
}

// parseDetectError converts AWS API errors into the package sentinels where a
// known condition applies; everything else is passed through.
func parseDetectError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		case errCodeInvalidParameter, errCodeInvalidImage, errCodeImageTooLarge:
			return fmt.Errorf("%w: %s", ErrNoFaceDetected, apiErr.ErrorMessage())
		}
	}
	return err
}
