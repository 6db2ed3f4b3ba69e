package draftarchive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mailpilot-backend/config"
	dbmodels "mailpilot-backend/models/db"
	s3client "mailpilot-backend/s3"
	"time"

	"github.com/minio/minio-go/v7"
	log "github.com/sirupsen/logrus"
)

// Provider archives the gated action payload to object storage at request
// creation, so auditors can see exactly what was pending approval even if the
// upstream draft is edited later.
type Provider interface {
	ArchivePayload(ctx context.Context, spaceID, requestID string, payload dbmodels.JSONMap) (objectKey string, err error)
	GetPayload(ctx context.Context, objectKey string) ([]byte, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		client: s3client.Client,
	}
}

type impl struct {
	client *minio.Client
}

func (i impl) ArchivePayload(ctx context.Context, spaceID, requestID string, payload dbmodels.JSONMap) (string, error) {
	if i.client == nil {
		// object storage is optional, the approval flow works without it
		log.WithField("request_id", requestID).Warn("draft archive skipped, s3 client is not configured")
		return "", nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	objectKey := fmt.Sprintf("%s/%s/%s.json", spaceID, time.Now().Format("2006-01"), requestID)
	_, err = i.client.PutObject(ctx, config.Conf.S3.BucketName, objectKey,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (i impl) GetPayload(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := i.client.GetObject(ctx, config.Conf.S3.BucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	buf := bytes.Buffer{}
	if _, err = buf.ReadFrom(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
