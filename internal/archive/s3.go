package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xitongsys/parquet-go/source"
)

// s3File buffers parquet output in memory and uploads the object on Close.
// S3 objects are immutable, so the file is written as a single PutObject.
type s3File struct {
	client *s3.Client
	bucket string
	key    string
	buffer bytes.Buffer
	offset int64
}

func newS3File(region, bucket, key string) (source.ParquetFile, error) {
	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}
	return &s3File{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		key:    key,
	}, nil
}

func (f *s3File) Open(name string) (source.ParquetFile, error) {
	// the object is created implicitly when writing starts, so the
	// current instance is already usable.
	return f, nil
}

func (f *s3File) Create(name string) (source.ParquetFile, error) {
	return f, nil
}

func (f *s3File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.offset = offset
	case io.SeekCurrent:
		f.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for S3 objects")
	}
	return f.offset, nil
}

func (f *s3File) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for S3 objects")
}

func (f *s3File) Write(p []byte) (n int, err error) {
	return f.buffer.Write(p)
}

func (f *s3File) Close() error {
	ctx := context.Background()
	_, err := f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key),
		Body:   bytes.NewReader(f.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("unable to upload archive to S3: %v", err)
	}
	return nil
}
