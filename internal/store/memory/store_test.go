package memory

import (
	"testing"

	"github.com/chatrelay/chatrelay-backend/internal/store"
	"github.com/chatrelay/chatrelay-backend/internal/store/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return NewMemoryStore()
	})
}
