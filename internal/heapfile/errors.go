package heapfile

import (
	"fmt"

	"dbkernel/internal/storage"
)

func errBlockNotFound(id storage.BlockID) error {
	return fmt.Errorf("block %d not found", id)
}
