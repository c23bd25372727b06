package store

import "errors"

var (
	// ErrBackupOptionsNil is returned when Backup is invoked with nil options.
	ErrBackupOptionsNil = errors.New("backup options are nil")
	// ErrBackupDirectoryFailed indicates a backup directory operation failed.
	ErrBackupDirectoryFailed = errors.New("backup directory operation failed")
	// ErrBackupTempFileFailed indicates a backup temporary file operation failed.
	ErrBackupTempFileFailed = errors.New("backup temporary file operation failed")
	// ErrBackupCopyFailed indicates a failure while copying snapshot data.
	ErrBackupCopyFailed = errors.New("snapshot copy failed")
	// ErrBackupFinalizeFailed indicates a failure while finalizing snapshot files.
	ErrBackupFinalizeFailed = errors.New("snapshot finalize failed")
	// ErrBBoltBucketCreateFailed indicates creating a bbolt bucket failed.
	ErrBBoltBucketCreateFailed = errors.New("bbolt bucket create failed")
	// ErrBBoltSnapshotCloseFailed indicates closing a bbolt snapshot failed.
	ErrBBoltSnapshotCloseFailed = errors.New("bbolt snapshot close failed")
	// ErrBBoltSnapshotOpenFailed indicates opening a bbolt snapshot failed.
	ErrBBoltSnapshotOpenFailed = errors.New("bbolt snapshot open failed")
	// ErrBBoltSnapshotStatFailed indicates statting a bbolt snapshot failed.
	ErrBBoltSnapshotStatFailed = errors.New("bbolt snapshot stat failed")
	// ErrBBoltWriteFailed indicates writing to bbolt failed.
	ErrBBoltWriteFailed = errors.New("bbolt write failed")
	// ErrBucketNotFound is returned when the requested bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrDiskDirectoryCreateFailed indicates disk directory creation failed.
	ErrDiskDirectoryCreateFailed = errors.New("disk directory create failed")
	// ErrDiskPathIsDirectory indicates the configured disk path points to a directory.
	ErrDiskPathIsDirectory = errors.New("disk path is a directory")
	// ErrDiskPathResolveFailed indicates disk path resolution failed.
	ErrDiskPathResolveFailed = errors.New("disk path resolve failed")
	// ErrDiskStoreClearFailed indicates clearing the disk store failed.
	ErrDiskStoreClearFailed = errors.New("disk store clear failed")
	// ErrDiskStoreClosed is returned when disk store operations run before Open().
	ErrDiskStoreClosed = errors.New("disk store is closed; call Open() before performing operations")
	// ErrDiskStoreDeleteFailed indicates delete operations failed.
	ErrDiskStoreDeleteFailed = errors.New("disk store delete failed")
	// ErrDiskStoreLocked is returned when the bbolt file lock cannot be obtained in time.
	ErrDiskStoreLocked = errors.New("disk store file is locked by another process")
	// ErrDiskStoreOpenFailed indicates opening the disk store failed.
	ErrDiskStoreOpenFailed = errors.New("disk store open failed")
	// ErrDiskStoreReadFailed indicates reading from the disk store failed.
	ErrDiskStoreReadFailed = errors.New("disk store read failed")
	// ErrDiskStoreSizeFailed indicates computing disk store size failed.
	ErrDiskStoreSizeFailed = errors.New("disk store size failed")
	// ErrDiskStoreStatFailed indicates statting disk store files failed.
	ErrDiskStoreStatFailed = errors.New("disk store stat failed")
	// ErrDiskStoreWriteFailed indicates writing to the disk store failed.
	ErrDiskStoreWriteFailed = errors.New("disk store write failed")
	// ErrInvalidBackend is returned when an unknown backend name is configured.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrKeyTooLarge is returned when a key exceeds MaxDiskKeyLen on a bbolt-backed path.
	ErrKeyTooLarge = errors.New("key too large for disk storage")
	// ErrKVOptionsConflict is returned when a shared store is reopened with different options.
	ErrKVOptionsConflict = errors.New("store already opened with different options")
	// ErrKVOptionsInvalid is returned when user options cannot be parsed or validated.
	ErrKVOptionsInvalid = errors.New("invalid store options")
	// ErrRestoreBudgetBytesExceeded is returned when restore MaxBytes cap is hit.
	ErrRestoreBudgetBytesExceeded = errors.New("restore exceeded MaxBytes cap")
	// ErrRestoreBudgetEntriesExceeded is returned when restore MaxEntries cap is hit.
	ErrRestoreBudgetEntriesExceeded = errors.New("restore exceeded MaxEntries cap")
	// ErrRestoreOptionsNil is returned when Restore is invoked with nil options.
	ErrRestoreOptionsNil = errors.New("restore options are nil")
	// ErrSnapshotExportFailed indicates a failure while exporting snapshot data.
	ErrSnapshotExportFailed = errors.New("snapshot export failed")
	// ErrSnapshotNotFound is returned when a snapshot file cannot be located.
	ErrSnapshotNotFound = errors.New("snapshot file not found")
	// ErrSnapshotOpenFailed is returned when a snapshot file cannot be opened.
	ErrSnapshotOpenFailed = errors.New("snapshot open failed")
	// ErrSnapshotPathResolveFailed indicates resolving the default snapshot path failed.
	ErrSnapshotPathResolveFailed = errors.New("snapshot path resolve failed")
	// ErrSnapshotPermissionDenied is returned when snapshot file permissions prevent access.
	ErrSnapshotPermissionDenied = errors.New("snapshot permission denied")
	// ErrSnapshotKeyInvalid is returned when a snapshot holds a key this package did not write.
	ErrSnapshotKeyInvalid = errors.New("snapshot key is not in kvstore format")
	// ErrSnapshotReadFailed indicates a failure while reading snapshot contents.
	ErrSnapshotReadFailed = errors.New("snapshot read failed")
)
