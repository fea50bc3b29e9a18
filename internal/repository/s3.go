package repository

import (
	"bytes"
	"context"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/pkg/errors"
)

type S3Archive struct { // implements Archive
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archive(ctx context.Context, cfg config.ArchiveConfig) (*S3Archive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading S3 configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (a *S3Archive) key(id model.PostID) string {
	return a.prefix + string(id) + ".md"
}

// archiveHeader is written as the %%% front matter block, the same format
// the importer reads back.
type archiveHeader struct {
	Title    string    `toml:"title"`
	Date     time.Time `toml:"date"`
	Modified time.Time `toml:"modified"`
	AuthorID string    `toml:"author_id"`
}

// MarshalPost renders post as markdown with a TOML front matter block.
func MarshalPost(post *model.Post) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("%%%\n")
	err := toml.NewEncoder(&buf).Encode(archiveHeader{
		Title:    post.Title,
		Date:     post.CreatedAt,
		Modified: post.UpdatedAt,
		AuthorID: string(post.AuthorID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding front matter")
	}
	buf.WriteString("%%%\n")
	buf.WriteString(post.Content)
	return buf.Bytes(), nil
}

func (a *S3Archive) PutPost(ctx context.Context, post *model.Post) error {
	body, err := MarshalPost(post)
	if err != nil {
		return err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(post.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/markdown; charset=utf-8"),
	})
	if err != nil {
		return errors.Wrapf(err, "uploading post %s", post.ID)
	}

	repoLogger.Debug().Str("post_id", string(post.ID)).Str("bucket", a.bucket).Msg("Post archived")
	return nil
}

func (a *S3Archive) DeletePost(ctx context.Context, id model.PostID) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(id)),
	})
	if err != nil {
		return errors.Wrapf(err, "removing archived post %s", id)
	}
	return nil
}
