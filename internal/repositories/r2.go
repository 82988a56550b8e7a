package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStorage serves challenge illustrations out of an R2 (S3-compatible) bucket.
type ObjectStorage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	endpoint   string
}

// NewObjectStorage builds an R2 client using static credentials and the
// account-scoped endpoint.
func NewObjectStorage(accessKey, secretKey, accountID, bucketName, region string) (*ObjectStorage, error) {
	if accessKey == "" || secretKey == "" || accountID == "" || bucketName == "" {
		return nil, errors.New("incomplete R2 configuration")
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		Region:      region,
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &ObjectStorage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		endpoint:   endpoint,
	}, nil
}

// PresignGet creates a temporary download URL for key.
func (o *ObjectStorage) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := o.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// ObjectExists checks if key is present in the bucket. Used by the seed
// command to warn about illustrations that were never uploaded.
func (o *ObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
