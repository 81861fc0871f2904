package v1

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

const downloadTTL = 10 * time.Minute

// download 流式运行生成的结果文件，凭一次性 token 下载
type download struct {
	fileName  string
	content   []byte
	expiresAt time.Time
}

type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
	now   func() time.Time
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]download),
		now:   time.Now,
	}
}

func (s *downloadStore) put(fileName string, content []byte, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	s.items[token] = download{
		fileName:  fileName,
		content:   content,
		expiresAt: now.Add(ttl),
	}
	return token
}

// take 取出并删除
func (s *downloadStore) take(token string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return download{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
