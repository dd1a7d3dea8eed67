package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

func JsonReadSharedLock[T any](filename string) (*T, error) {
	file, err := os.OpenFile(filename, os.O_RDONLY, 0666)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// lock the file (shared lock)
	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_SH); err != nil {
		return nil, err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	var data T
	err = json.NewDecoder(file).Decode(&data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	return &data, nil
}

// JsonUpdateExclusiveLock applies update to the file contents under an exclusive lock.
// A missing or empty file starts from the zero value.
func JsonUpdateExclusiveLock[T any](filename string, update func(data *T) error) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	// lock the file (exclusive lock)
	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	var data T
	err = json.NewDecoder(file).Decode(&data)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	err = update(&data)
	if err != nil {
		return err
	}

	err = json.NewEncoder(file).Encode(data)
	if err != nil {
		return err
	}

	// Get the current position of the file pointer and truncate the file to that position
	pos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	return file.Truncate(pos)
}
