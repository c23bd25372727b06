package kv

import (
	"errors"

	"github.com/oshokin/kvstore/kv/store"
)

var _ error = (*Error)(nil)

// ErrorName represents the name of an error.
type ErrorName string

const (
	// BackupOptionsRequiredError is emitted when backup options are missing.
	BackupOptionsRequiredError ErrorName = "BackupOptionsRequiredError"

	// BucketNotFoundError is emitted when the disk store bucket is missing.
	BucketNotFoundError ErrorName = "BucketNotFoundError"

	// DatabaseNotOpenError is emitted when the store is used before openStore() succeeded.
	DatabaseNotOpenError ErrorName = "DatabaseNotOpenError"

	// DiskPathError is emitted when disk path resolution or directory creation fails.
	DiskPathError ErrorName = "DiskPathError"

	// DiskStoreDeleteError is emitted when delete or clear fails.
	DiskStoreDeleteError ErrorName = "DiskStoreDeleteError"

	// DiskStoreLockedError is emitted when another process holds the database file lock.
	DiskStoreLockedError ErrorName = "DiskStoreLockedError"

	// DiskStoreOpenError is emitted when the disk backend cannot be opened.
	DiskStoreOpenError ErrorName = "DiskStoreOpenError"

	// DiskStoreReadError is emitted when reads from the disk backend fail.
	DiskStoreReadError ErrorName = "DiskStoreReadError"

	// DiskStoreSizeError is emitted when counting entries fails.
	DiskStoreSizeError ErrorName = "DiskStoreSizeError"

	// DiskStoreWriteError is emitted when writes to the disk backend fail.
	DiskStoreWriteError ErrorName = "DiskStoreWriteError"

	// InvalidBackendError is emitted when the backend option is not recognized.
	InvalidBackendError ErrorName = "InvalidBackendError"

	// KeyTooLargeError is emitted when a key is too long for the disk backend or a snapshot.
	KeyTooLargeError ErrorName = "KeyTooLargeError"

	// OptionsConflictError is emitted when openStore() is called with options that
	// differ from the ones the shared store was created with.
	OptionsConflictError ErrorName = "OptionsConflictError"

	// OptionsInvalidError is emitted when openStore(), backup() or restore() options
	// cannot be parsed.
	OptionsInvalidError ErrorName = "OptionsInvalidError"

	// RestoreOptionsRequiredError is emitted when restore options are missing.
	RestoreOptionsRequiredError ErrorName = "RestoreOptionsRequiredError"

	// SnapshotBudgetExceededError is emitted when MaxEntries/MaxBytes limits reject the restore.
	SnapshotBudgetExceededError ErrorName = "SnapshotBudgetExceededError"

	// SnapshotExportError is emitted when snapshot export/finalization fails.
	SnapshotExportError ErrorName = "SnapshotExportError"

	// SnapshotIOError is emitted when low-level snapshot IO operations fail.
	SnapshotIOError ErrorName = "SnapshotIOError"

	// SnapshotNotFoundError is emitted when the snapshot file cannot be located.
	SnapshotNotFoundError ErrorName = "SnapshotNotFoundError"

	// SnapshotPermissionError is emitted when the snapshot file cannot be accessed due to permissions.
	SnapshotPermissionError ErrorName = "SnapshotPermissionError"

	// SnapshotReadError is emitted when snapshot reads fail.
	SnapshotReadError ErrorName = "SnapshotReadError"

	// StoreClosedError is emitted when a disk store is used after its last close().
	StoreClosedError ErrorName = "StoreClosedError"
)

// Error represents a custom error emitted by the kv module.
type Error struct {
	// Name contains one of the strings associated with an error name.
	Name ErrorName `json:"name"`

	// Message represents message or description associated with the given error name.
	Message string `json:"message"`
}

// NewError returns a new Error instance.
func NewError(name ErrorName, message string) *Error {
	return &Error{
		Name:    name,
		Message: message,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Name) + ": " + e.Message
}

// classifyError downgrades internal Go errors to structured kv errors for JS.
//
//nolint:cyclop // one case per error family.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var kvErr *Error
	if errors.As(err, &kvErr) {
		return kvErr
	}

	switch {
	// Operation errors wrap ErrDiskStoreClosed, so it is matched first.
	case errors.Is(err, store.ErrDiskStoreClosed):
		return NewError(StoreClosedError, err.Error())
	case errors.Is(err, store.ErrKeyTooLarge):
		return NewError(KeyTooLargeError, err.Error())
	case errors.Is(err, store.ErrBackupOptionsNil):
		return NewError(BackupOptionsRequiredError, err.Error())
	case errors.Is(err, store.ErrRestoreOptionsNil):
		return NewError(RestoreOptionsRequiredError, err.Error())
	case errors.Is(err, store.ErrKVOptionsConflict):
		return NewError(OptionsConflictError, err.Error())
	case errors.Is(err, store.ErrKVOptionsInvalid):
		return NewError(OptionsInvalidError, err.Error())
	case errors.Is(err, store.ErrInvalidBackend):
		return NewError(InvalidBackendError, err.Error())
	case errors.Is(err, store.ErrRestoreBudgetEntriesExceeded),
		errors.Is(err, store.ErrRestoreBudgetBytesExceeded):
		return NewError(SnapshotBudgetExceededError, err.Error())
	case errors.Is(err, store.ErrSnapshotNotFound):
		return NewError(SnapshotNotFoundError, err.Error())
	case errors.Is(err, store.ErrSnapshotPermissionDenied):
		return NewError(SnapshotPermissionError, err.Error())
	case errors.Is(err, store.ErrDiskPathResolveFailed),
		errors.Is(err, store.ErrDiskPathIsDirectory),
		errors.Is(err, store.ErrDiskDirectoryCreateFailed):
		return NewError(DiskPathError, err.Error())
	case errors.Is(err, store.ErrDiskStoreLocked):
		return NewError(DiskStoreLockedError, err.Error())
	case errors.Is(err, store.ErrDiskStoreOpenFailed):
		return NewError(DiskStoreOpenError, err.Error())
	case errors.Is(err, store.ErrDiskStoreReadFailed):
		return NewError(DiskStoreReadError, err.Error())
	case errors.Is(err, store.ErrDiskStoreWriteFailed):
		return NewError(DiskStoreWriteError, err.Error())
	case errors.Is(err, store.ErrDiskStoreDeleteFailed),
		errors.Is(err, store.ErrDiskStoreClearFailed):
		return NewError(DiskStoreDeleteError, err.Error())
	case errors.Is(err, store.ErrDiskStoreSizeFailed),
		errors.Is(err, store.ErrDiskStoreStatFailed):
		return NewError(DiskStoreSizeError, err.Error())
	case errors.Is(err, store.ErrBackupDirectoryFailed),
		errors.Is(err, store.ErrBackupTempFileFailed),
		errors.Is(err, store.ErrBackupCopyFailed),
		errors.Is(err, store.ErrBackupFinalizeFailed),
		errors.Is(err, store.ErrSnapshotExportFailed):
		return NewError(SnapshotExportError, err.Error())
	case errors.Is(err, store.ErrBBoltSnapshotOpenFailed),
		errors.Is(err, store.ErrBBoltSnapshotCloseFailed),
		errors.Is(err, store.ErrBBoltSnapshotStatFailed),
		errors.Is(err, store.ErrBBoltBucketCreateFailed),
		errors.Is(err, store.ErrBBoltWriteFailed),
		errors.Is(err, store.ErrSnapshotOpenFailed):
		return NewError(SnapshotIOError, err.Error())
	case errors.Is(err, store.ErrSnapshotReadFailed),
		errors.Is(err, store.ErrSnapshotKeyInvalid),
		errors.Is(err, store.ErrSnapshotPathResolveFailed):
		return NewError(SnapshotReadError, err.Error())
	case errors.Is(err, store.ErrBucketNotFound):
		return NewError(BucketNotFoundError, err.Error())
	}

	return err
}
