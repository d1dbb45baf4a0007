package common

// MasterKeyMetadataKey is the metadata row holding the account master key
// from which every backup key is derived.
const MasterKeyMetadataKey = "master_key"

// BackupFormatVersion is written into the BackupInfo header of every backup.
const BackupFormatVersion uint64 = 1

// LocalAciMetadataKey is the metadata row holding the service id of the local
// account, in canonical string form.
const LocalAciMetadataKey = "local_aci"
