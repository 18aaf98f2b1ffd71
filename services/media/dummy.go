package mediasvc

import (
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
)

// DummyService keeps uploads in memory; used in dev and tests.
type DummyService struct {
	mu    sync.RWMutex
	files map[string][]byte // publicID -> content
}

var _ core.MediaService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{files: make(map[string][]byte)}
}

func (svc *DummyService) Upload(ctx context.Context, r io.Reader, filename string) (core.Upload, error) {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return core.Upload{}, errors.Wrap(err, "reading upload")
	}

	publicID := uuid.NewString()
	svc.mu.Lock()
	svc.files[publicID] = content
	svc.mu.Unlock()

	return core.Upload{
		URL:      "https://media.test/" + publicID + "/" + filename,
		PublicID: publicID,
	}, nil
}

func (svc *DummyService) Delete(ctx context.Context, publicID string) error {
	svc.mu.Lock()
	delete(svc.files, publicID)
	svc.mu.Unlock()
	return nil
}

// Has reports whether a file with publicID is stored.
func (svc *DummyService) Has(publicID string) bool {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	_, ok := svc.files[publicID]
	return ok
}
