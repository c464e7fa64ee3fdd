package manifest

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/endpoint"
)

// S3Client is the subset of the S3 API used by S3Store.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps a manifest as a single S3 object.
// The format follows the key's extension.
type S3Store struct {
	Client S3Client
	Bucket string
	Key    string
}

var _ endpoint.Loader = (*S3Store)(nil)

// NewS3Store creates an S3 store using the default AWS credential chain.
// An empty region defers to the environment.
func NewS3Store(ctx context.Context, bucket, key, region string) (*S3Store, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E130").WithDetail("loading AWS config").Wrap(err)
	}

	return &S3Store{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Key:    key,
	}, nil
}

// Load fetches the manifest. A missing object is an empty manifest.
func (s *S3Store) Load(ctx context.Context) ([]endpoint.Endpoint, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, errors.New("E130").WithDetail("fetching " + s.String()).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E130").WithDetail("reading " + s.String()).Wrap(err)
	}
	return Decode(data, FormatFor(s.Key))
}

// Save uploads the manifest.
func (s *S3Store) Save(ctx context.Context, eps []endpoint.Endpoint) error {
	format := FormatFor(s.Key)
	data, err := Encode(eps, format)
	if err != nil {
		return err
	}

	contentType := "application/json"
	if format == YAML {
		contentType = "application/yaml"
	}

	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.New("E131").WithDetail("uploading " + s.String()).Wrap(err)
	}
	return nil
}

// String returns the object URI.
func (s *S3Store) String() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchKey"
	}
	return false
}
