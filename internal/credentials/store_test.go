package credentials

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_Encode_Decode(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	in := &Credential{
		Token:        "t",
		RefreshToken: "r",
		ClientID:     "id",
		Scopes:       []string{YouTubeScope},
		Expiry:       expiry,
	}
	b, err := in.Encode()
	require.NoError(t, err)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCredential_Decode_google_authorized_user_layout(t *testing.T) {
	blob := `{"token": "ya29.a0", "refresh_token": "1//0g", "token_uri": "https://oauth2.googleapis.com/token",
		"client_id": "123.apps.googleusercontent.com", "client_secret": "s",
		"scopes": ["https://www.googleapis.com/auth/youtube"], "expiry": "2025-06-01T13:00:00.123456Z"}`

	c, err := Decode([]byte(blob))
	require.NoError(t, err)
	assert.Equal(t, "ya29.a0", c.Token)
	assert.Equal(t, "1//0g", c.RefreshToken)
	assert.Equal(t, 2025, c.Expiry.Year())
	assert.False(t, c.ExpiredAt(fixedNow))
	assert.True(t, c.ExpiredAt(fixedNow.Add(2*time.Hour)))
}

func TestCredential_ValidAt(t *testing.T) {
	assert.False(t, (*Credential)(nil).ValidAt(fixedNow))
	assert.False(t, (&Credential{}).ValidAt(fixedNow))
	assert.True(t, (&Credential{Token: "t"}).ValidAt(fixedNow), "zero expiry never expires")
	assert.False(t, (&Credential{Token: "t", Expiry: fixedNow.Add(5 * time.Second)}).ValidAt(fixedNow), "within skew counts as expired")
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token", "token.json")
	store := NewFileStore(path)

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, store.Put(context.Background(), []byte(`{"token":"t"}`)))
	b, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"token":"t"}`, string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

type fakeS3 struct {
	objects map[string][]byte
	getErr  error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3StoreWithClient(fake, "tokens", "token/token.json")
	assert.Equal(t, "s3://tokens/token/token.json", store.Location())

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, store.Put(context.Background(), []byte("blob")))
	assert.Equal(t, []byte("blob"), fake.objects["tokens/token/token.json"])

	b, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blob", string(b))
}

func TestS3Store_get_error(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, getErr: errors.New("AccessDenied")}
	store := NewS3StoreWithClient(fake, "tokens", "k")

	_, err := store.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobNotFound)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewS3Store_requires_location(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Bucket: "tokens"})
	assert.Error(t, err)
}

// fakeRedis implements the two commands RedisStore issues. Any other call panics.
type fakeRedis struct {
	redis.Cmdable
	values map[string]string
	err    error
	ttl    time.Duration
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = string(value.([]byte))
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStore(t *testing.T) {
	fake := &fakeRedis{values: map[string]string{}}
	store := NewRedisStore(fake, "youtube:token")

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, store.Put(context.Background(), []byte("blob")))
	assert.Equal(t, "blob", fake.values["youtube:token"])
	assert.Zero(t, fake.ttl, "credential key must not expire")

	b, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blob", string(b))
}

func TestRedisStore_errors(t *testing.T) {
	store := NewRedisStore(&fakeRedis{err: errors.New("connection refused")}, "youtube:token")

	_, err := store.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobNotFound)
	assert.Contains(t, err.Error(), "connection refused")

	assert.ErrorContains(t, store.Put(context.Background(), []byte("blob")), "redis set youtube:token")
}

// Runs against a real Redis when REDIS_ADDR is set.
func TestRedisStore_integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	key := "livestream-controller:test:" + t.Name()
	t.Cleanup(func() { client.Del(ctx, key) })

	store := NewRedisStore(client, key)
	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, store.Put(ctx, []byte("blob")))
	b, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "blob", string(b))
}
