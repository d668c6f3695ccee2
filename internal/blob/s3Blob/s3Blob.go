package s3Blob

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/adevara/docqa/internal/blob"
	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/pkg/logger_i"
)

type S3Client struct {
	client    *s3.Client
	container string
	logger    *logger_i.Logger
}

func NewS3Client(ctx context.Context, env *config.Env) (blob.Reader, error) {
	if env.AwsAccessKey == "" || env.AwsSecretKey == "" {
		return nil, faults.New(faults.Provider, "blob storage credentials not set")
	}
	if env.ContainerName == "" {
		return nil, faults.New(faults.Provider, "blob container name not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(env.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(env.AwsAccessKey, env.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, faults.Wrap(faults.Provider, "load aws config", err)
	}

	logger := logger_i.NewLogger("S3 Blob")
	logger.Info("Connected to blob storage", "container", env.ContainerName)

	return &S3Client{
		client:    s3.NewFromConfig(awsCfg),
		container: env.ContainerName,
		logger:    logger,
	}, nil
}

func (c *S3Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, config.BlobFetchTimeout)
	defer cancel()

	resp, err := c.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(c.container),
		Key:    aws.String(name),
	})
	if err != nil {
		c.logger.Error("blob fetch failed", "name", name, "error", err)
		return nil, faults.ProviderFault(faults.SubTransient, "blob fetch failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.ProviderFault(faults.SubTransient, "reading blob body", err)
	}
	return body, nil
}
