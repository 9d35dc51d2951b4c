package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/journal/internal/storage"
)

type object struct {
	body     string
	modified time.Time
}

// fakeAPI is an in-memory bucket.
type fakeAPI struct {
	mu      sync.Mutex
	objects map[string]object
	putErr  error
	now     time.Time
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: map[string]object{}, now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeAPI) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Minute)
	f.objects[aws.ToString(in.Key)] = object{body: string(data), modified: f.now}
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObjects(ctx context.Context, in *awss3.DeleteObjectsInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
	}
	return &awss3.DeleteObjectsOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		obj := f.objects[k]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.body))),
			LastModified: aws.Time(obj.modified),
		})
	}
	return out, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts awss3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.example/" + aws.ToString(in.Key) + "?expires=" + opts.Expires.String(),
		Method: http.MethodGet,
	}, nil
}

func TestBackend_UploadUsesPrefixedKey(t *testing.T) {
	api := newFakeAPI()
	b := NewWithClient(api, fakePresigner{}, "journal", "media")

	location, err := b.Upload(context.Background(), "e1/m1_cat.jpg", strings.NewReader("meow"))
	require.NoError(t, err)
	assert.Equal(t, "media/e1/m1_cat.jpg", location)
	assert.Equal(t, "meow", api.objects["media/e1/m1_cat.jpg"].body)
}

func TestBackend_UploadError(t *testing.T) {
	api := newFakeAPI()
	api.putErr = errors.New("bucket gone")
	b := NewWithClient(api, fakePresigner{}, "journal", "")

	_, err := b.Upload(context.Background(), "e1/a.png", strings.NewReader("x"))
	assert.ErrorContains(t, err, "bucket gone")

	_, err = b.Upload(context.Background(), "../a.png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestBackend_DeleteAndDeleteDir(t *testing.T) {
	api := newFakeAPI()
	b := NewWithClient(api, fakePresigner{}, "journal", "media/")
	ctx := context.Background()

	a, err := b.Upload(ctx, "e1/a.png", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = b.Upload(ctx, "e1/b.png", strings.NewReader("b"))
	require.NoError(t, err)
	_, err = b.Upload(ctx, "e2/c.png", strings.NewReader("c"))
	require.NoError(t, err)

	require.NoError(t, b.Delete(ctx, a))
	assert.NotContains(t, api.objects, a)
	assert.ErrorIs(t, b.Delete(ctx, "elsewhere/x.png"), storage.ErrNotManaged)

	require.NoError(t, b.DeleteDir(ctx, "e1"))
	assert.Len(t, api.objects, 1)
	assert.Contains(t, api.objects, "media/e2/c.png")

	assert.NoError(t, b.DeleteDir(ctx, "missing"))
	assert.Error(t, b.DeleteDir(ctx, "a/b"))
}

func TestBackend_ListDirs(t *testing.T) {
	api := newFakeAPI()
	b := NewWithClient(api, fakePresigner{}, "journal", "media")
	ctx := context.Background()

	_, err := b.Upload(ctx, "e1/a.png", strings.NewReader("abc"))
	require.NoError(t, err)
	_, err = b.Upload(ctx, "e2/b.png", strings.NewReader("de"))
	require.NoError(t, err)
	_, err = b.Upload(ctx, "e1/c.png", strings.NewReader("f"))
	require.NoError(t, err)

	dirs, err := b.ListDirs(ctx)
	require.NoError(t, err)
	require.Len(t, dirs, 2)

	assert.Equal(t, "e1", dirs[0].Name)
	assert.Equal(t, int64(4), dirs[0].Size)
	assert.Equal(t, api.objects["media/e1/c.png"].modified, dirs[0].ModifiedAt)
	assert.Equal(t, "e2", dirs[1].Name)
	assert.Equal(t, int64(2), dirs[1].Size)
}

func TestBackend_URLIsPresigned(t *testing.T) {
	b := NewWithClient(newFakeAPI(), fakePresigner{}, "journal", "")

	u, err := b.URL(context.Background(), "e1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/e1/a.png?expires="+linkExpiry.String(), u)

	_, err = b.URL(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrNotManaged)
}

func TestNew_AppliesConfig(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var region string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		region = lo.Region
		return aws.Config{Region: lo.Region}, nil
	}

	b, err := New(context.Background(), Config{
		Bucket:    "journal",
		Region:    "eu-central-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "admin",
		SecretKey: "secret",
		Prefix:    "media",
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", region)
	assert.Equal(t, "media/", b.prefix)

	_, err = New(context.Background(), Config{})
	assert.Error(t, err)
}
