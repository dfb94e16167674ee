package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrObjectKey = "s3.key"
	otelAttrBucket    = "s3.bucket"
	otelAttrSize      = "s3.size"

	presignExpiry = 24 * time.Hour
)

// Object is a generated file. When Download is set the object is served as an
// attachment with that file name.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
	Download    string
}

// S3 stores generated reports in an S3-compatible bucket.
type S3 interface {
	PutObject(ctx context.Context, object Object) (url string, err error)
}

type s3Impl struct {
	client    *s3.Client
	presigner *s3.PresignClient
	config    *config.Config
	otel      otel.Otel
}

// PutObject uploads the object and returns its link: under PUBLIC_DOMAIN when
// one is configured, otherwise a presigned GET valid for a day.
func (svc *s3Impl) PutObject(ctx context.Context, object Object) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".PutObject")
	defer scope.End()
	defer scope.TraceIfError(err)

	bucket := svc.config.External.S3.BucketName

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: object.Key,
		otelAttrBucket:    bucket,
		otelAttrSize:      len(object.Body),
	})

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(object.Key),
		Body:          bytes.NewReader(object.Body),
		ContentType:   aws.String(object.ContentType),
		ContentLength: aws.Int64(int64(len(object.Body))),
	}

	if object.Download != "" {
		input.ContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": object.Download}))
	}

	if _, err = svc.client.PutObject(ctx, input); err != nil {
		return constant.Empty, fmt.Errorf("failed to upload %s to S3: %w", object.Key, err)
	}

	if domain := strings.TrimSuffix(svc.config.External.S3.PublicDomain, "/"); domain != "" {
		return domain + "/" + path.Clean(object.Key), nil
	}

	presigned, err := svc.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object.Key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to presign %s: %w", object.Key, err)
	}

	return presigned.URL, nil
}

func New(config *config.Config, otel otel.Otel) S3 {
	external := config.External.S3

	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(external.AccessKeyID, external.SecretAccessKey, "")),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if external.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(external.APIEndpoint)
		}

		o.UsePathStyle = true
		o.Region = "auto"
	})

	return &s3Impl{
		client:    client,
		presigner: s3.NewPresignClient(client),
		config:    config,
		otel:      otel,
	}
}
