package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/chatbackup/internal/backupkey"
	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/cryptox"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/filex"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/timex"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned by export and import before init has run.
var ErrNotInitialized = errors.New("account not initialized, run init first")

// initAccount stores the account service id and master key and makes sure
// the local account has a recipient row. Empty answers generate fresh values.
func (a *App) initAccount(ctx context.Context) error {
	aciText, err := GetSimpleText(a.reader, "Account service id (empty to generate)", a.out)
	if err != nil {
		return err
	}
	aci := uuid.New()
	if aciText != "" {
		if aci, err = uuid.Parse(aciText); err != nil {
			return fmt.Errorf("invalid service id: %w", err)
		}
	}

	key, err := a.readMasterKey(aci)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	err = dbx.WithWriteTx(ctx, a.db, func(ctx context.Context, tx dbx.WriteTx) error {
		if err := a.repos.Metadata.Set(ctx, tx, common.MasterKeyMetadataKey, key); err != nil {
			return err
		}
		if err := a.repos.Metadata.Set(ctx, tx, common.LocalAciMetadataKey, []byte(aci.String())); err != nil {
			return err
		}

		self := models.NewAciAddress(aci)
		_, err := a.repos.Recipients.ByAddress(ctx, tx, self)
		if errors.Is(err, common.ErrorNotFound) {
			return a.repos.Recipients.Insert(ctx, tx, &models.Recipient{Kind: models.RecipientKindSelf, Address: self})
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("init account: %w", err)
	}

	fmt.Fprintf(a.out, "Account %s initialized\n", aci)
	return nil
}

// readMasterKey asks for a hex key first. Without one it falls back to a
// passphrase, and without that it generates a random key.
func (a *App) readMasterKey(aci uuid.UUID) ([]byte, error) {
	raw, err := GetSecret("Master key, hex (empty to use a passphrase)", a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(raw)

	if len(bytes.TrimSpace(raw)) > 0 {
		return decodeHexKey(raw, backupkey.KeySize)
	}

	phrase, err := GetSecret("Passphrase (empty to generate a random key)", a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(phrase)

	if len(phrase) > 0 {
		return cryptox.DeriveMasterKey(phrase, aci, backupkey.KeySize), nil
	}
	key := common.GenerateRandByteArray(backupkey.KeySize)
	fmt.Fprintf(a.out, "Generated master key (store it safely): %s\n", hex.EncodeToString(key))
	return key, nil
}

func (a *App) localAci(ctx context.Context) (uuid.UUID, error) {
	v, err := a.repos.Metadata.Get(ctx, a.db, common.LocalAciMetadataKey)
	if err != nil {
		return uuid.Nil, err
	}
	if v == nil {
		return uuid.Nil, ErrNotInitialized
	}
	return uuid.Parse(string(v))
}

// export writes to a temporary file next to the target and renames it into
// place once the stream is complete.
func (a *App) export(ctx context.Context) error {
	aci, err := a.localAci(ctx)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(filepath.Dir(a.config.BackupPath))
	if err != nil {
		return fmt.Errorf("backup directory: %w", err)
	}
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(a.config.BackupPath)+"."+suffix)
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer os.Remove(tmp)

	summary, err := a.exporter.Export(ctx, aci, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return a.keyError(ctx, "export", err)
	}
	if err := os.Rename(tmp, a.config.BackupPath); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Fprintf(a.out, "Exported %d chat items to %s (%d partial, %d failed)\n",
		summary.ChatItems, a.config.BackupPath, summary.Partial, summary.Failed)
	return nil
}

func (a *App) importBackup(ctx context.Context) error {
	aci, err := a.localAci(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(a.config.BackupPath)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	summary, err := a.importer.Import(ctx, aci, f)
	if err != nil {
		return a.keyError(ctx, "import", err)
	}

	fmt.Fprintf(a.out, "Imported %d chat items from %s taken %s (%d partial, %d failed)\n",
		summary.ChatItems, a.config.BackupPath, timex.FromMillis(summary.BackupTimeMs).Format(time.RFC3339),
		summary.Partial, summary.Failed)
	return nil
}

// keyError tells apart key material that is corrupt from an account that
// is simply not set up yet. Only the latter goes away by running init.
func (a *App) keyError(ctx context.Context, op string, err error) error {
	switch {
	case backupkey.IsFatal(err):
		a.log.Error(ctx, "stored key material is unusable", "op", op, "error", err)
		return fmt.Errorf("%s: %w; the stored master key is corrupt, re-run init with the original key", op, err)
	case errors.Is(err, backupkey.ErrMissingMasterKey), errors.Is(err, backupkey.ErrNotRegistered):
		a.log.Warn(ctx, "account setup incomplete", "op", op, "error", err)
		return fmt.Errorf("%s: %w; run init and try again", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
