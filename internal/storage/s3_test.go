package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

// fakeBucket answers the handful of S3 calls the service makes.
type fakeBucket struct {
	mu      sync.Mutex
	keys    []string
	deletes int
	copies  []string
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.Method == http.MethodGet && q.Get("list-type") == "2":
		prefix := q.Get("prefix")
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
		b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
		b.WriteString(`<Name>focus</Name><IsTruncated>false</IsTruncated>`)
		for _, k := range f.keys {
			if strings.HasPrefix(k, prefix) {
				fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>2025-03-01T10:00:00.000Z</LastModified><Size>12</Size></Contents>`, k)
			}
		}
		b.WriteString(`</ListBucketResult>`)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(b.String()))
	case r.Method == http.MethodPut && r.Header.Get("X-Amz-Copy-Source") != "":
		dst := strings.TrimPrefix(r.URL.Path, "/focus/")
		f.copies = append(f.copies, r.Header.Get("X-Amz-Copy-Source")+" -> "+dst)
		f.keys = append(f.keys, dst)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><CopyObjectResult><LastModified>2025-03-01T10:00:00.000Z</LastModified><ETag>"abc"</ETag></CopyObjectResult>`))
	case r.Method == http.MethodPost && q.Has("delete"):
		f.deletes++
		f.keys = nil
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></DeleteResult>`))
	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.String(), http.StatusBadRequest)
	}
}

func newTestService(t *testing.T, endpoint string) *S3Service {
	t.Helper()
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
	return NewS3Service(client, "focus")
}

func TestS3ListAndDeletePrefix(t *testing.T) {
	bucket := &fakeBucket{keys: []string{
		"exports/alice/01J.json",
		"exports/alice/01K.json",
		"exports/bob/01J.json",
	}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	svc := newTestService(t, srv.URL)
	ctx := context.Background()

	objects, err := svc.List(ctx, "exports/alice/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	require.Equal(t, "exports/alice/01J.json", objects[0].Key)
	require.Equal(t, int64(12), objects[0].Size)
	require.NotNil(t, objects[0].LastModified)

	require.NoError(t, svc.DeletePrefix(ctx, "exports/alice/"))
	require.Equal(t, 1, bucket.deletes)

	objects, err = svc.List(ctx, "exports/")
	require.NoError(t, err)
	require.Empty(t, objects)
	require.NotNil(t, objects)

	require.NoError(t, svc.DeletePrefix(ctx, "exports/"))
	require.Equal(t, 1, bucket.deletes)
}

func TestS3Copy(t *testing.T) {
	bucket := &fakeBucket{keys: []string{"exports/alice/01J.json"}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	svc := newTestService(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, svc.Copy(ctx, "exports/alice/01J.json", "exports/alice2/01J.json"))
	require.Equal(t, []string{"focus/exports/alice/01J.json -> exports/alice2/01J.json"}, bucket.copies)

	objects, err := svc.List(ctx, "exports/alice2/")
	require.NoError(t, err)
	require.Len(t, objects, 1)

	require.ErrorContains(t, svc.Copy(ctx, "", "x"), "keys are required")
}

func TestS3RefusesEmptyKeys(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:1")
	ctx := context.Background()

	_, err := svc.Put(ctx, "/", strings.NewReader("{}"), "application/json")
	require.ErrorContains(t, err, "object key is required")

	err = svc.DeletePrefix(ctx, "  ")
	require.ErrorContains(t, err, "prefix is required")
}

func TestS3PresignGet(t *testing.T) {
	svc := newTestService(t, "http://minio.local:9000")
	require.Equal(t, "focus", svc.Bucket())

	raw, err := svc.PresignGet(context.Background(), "exports/alice/01J.json", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "minio.local:9000", u.Host)
	require.Equal(t, "/focus/exports/alice/01J.json", u.Path)
	require.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	require.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestOpenWithoutBucket(t *testing.T) {
	_, err := Open(context.Background(), Options{Bucket: " "})
	require.ErrorIs(t, err, ErrDisabled)
}
