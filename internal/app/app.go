package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"golang.org/x/sync/errgroup"

	"dump-go/internal/config"
	"dump-go/internal/dump"
	"dump-go/internal/encryption"
	"dump-go/internal/journal"
	"dump-go/internal/model"
	"dump-go/internal/storage"
	"dump-go/internal/titlefetch"
	"dump-go/internal/vault"
)

var (
	// ErrInboxProtected is returned when deleting the Inbox canvas.
	ErrInboxProtected = errors.New("the Inbox canvas cannot be deleted")

	// ErrNoVault is returned by backup commands when no vault is configured.
	ErrNoVault = errors.New("no vaults configured")
)

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// DumpApp is the application layer between the CLI and the store.
// It constructs all dependencies from config, runs the store's loop while a
// command executes, and releases the journal and log file on Close.
//
// Store access goes through Do and the helpers below, all of which must be
// called from inside Run.
type DumpApp struct {
	cfg       *config.Config
	journal   dump.Journal
	vault     dump.Vault
	encryptor dump.Encryptor
	fetcher   dump.TitleFetcher
	store     *dump.Store
	loop      *dump.Loop
	backup    *dump.BackupService
	logger    dump.Logger
	clock     dump.Clock
	op        *CommandOperation
	logFile   *os.File
}

// NewDumpApp creates a fully wired DumpApp from the given config.
// op identifies the CLI command being run. The caller must call Close when done.
func NewDumpApp(ctx context.Context, cfg *config.Config, op *CommandOperation) (*DumpApp, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	st, err := storage.NewStorageFromConfig(cfg.Storage)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	j, err := journal.NewJournalFromConfig(cfg.Journal, cfg.HostID)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	closeAll := func() {
		if j != nil {
			j.Close()
		}
		logFile.Close()
	}

	var v dump.Vault
	if len(cfg.Vaults) > 0 {
		v, err = vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := dump.RealClock{}
	store := dump.Open(st, j, logger, clock, dump.UUIDGenerator{})

	a := &DumpApp{
		cfg:       cfg,
		journal:   j,
		vault:     v,
		encryptor: enc,
		fetcher:   titlefetch.NewFetcherFromConfig(cfg.Titles),
		store:     store,
		loop:      dump.NewLoop(store, logger),
		backup:    dump.NewBackupService(store, v, enc, j, logger),
		logger:    logger,
		clock:     clock,
		op:        op,
		logFile:   logFile,
	}
	a.warnIfBehindRemote()
	return a, nil
}

// warnIfBehindRemote logs when the vault holds a snapshot taken after the
// newest local change, which usually means another session backed up.
func (a *DumpApp) warnIfBehindRemote() {
	if a.vault == nil || a.journal == nil {
		return
	}
	remote, err := a.vault.GetSnapshotVersion(a.cfg.HostID)
	if err != nil {
		a.logger.Warn("checking remote snapshot version", "error", err)
		return
	}
	local, err := a.journal.LatestID()
	if err != nil {
		a.logger.Warn("checking local journal version", "error", err)
		return
	}
	if remote > local {
		a.logger.Warn("local document is behind the remote snapshot, consider 'dump restore'",
			"local", local, "remote", remote)
	}
}

// Run starts a store loop, calls fn, waits for pending title lookups and
// stops the loop. If the tree changed, the command is written to the journal.
func (a *DumpApp) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	startVersion := a.store.Version()
	a.loop = dump.NewLoop(a.store, a.logger)
	loopCtx, stopLoop := context.WithCancel(context.Background())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.loop.Run(loopCtx)
	})
	g.Go(func() error {
		defer stopLoop()
		err := fn(gctx)
		a.loop.Wait()
		return err
	})
	err := g.Wait()

	if a.op != nil {
		a.op.Fail(err)
		if a.journal != nil && a.store.Version() != startVersion {
			if jerr := a.journal.Record(a.op.Record(a.clock.Now())); jerr != nil {
				a.logger.Warn("failed to journal command", "command", a.op.Name, "error", jerr)
			}
		}
	}
	return err
}

// Do runs fn on the store loop and waits for it.
func (a *DumpApp) Do(ctx context.Context, fn func(*dump.Store)) error {
	return a.loop.Do(ctx, fn)
}

// Capture adds raw input to canvasID ("" for the first root canvas). For
// links the title is looked up in the background when fetchTitle is set and
// lookup is enabled.
func (a *DumpApp) Capture(ctx context.Context, raw, canvasID string, fetchTitle bool) (string, error) {
	var fetcher dump.TitleFetcher
	if fetchTitle {
		fetcher = a.fetcher
	}
	id, err := a.loop.Capture(ctx, raw, canvasID, fetcher)
	if err != nil {
		return "", fmt.Errorf("capturing item: %w", err)
	}
	return id, nil
}

// Paste captures the current clipboard text.
func (a *DumpApp) Paste(ctx context.Context, canvasID string, fetchTitle bool) (string, error) {
	text, err := readClipboard()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return a.Capture(ctx, text, canvasID, fetchTitle)
}

// RefreshTitle looks up the title of a link item again.
func (a *DumpApp) RefreshTitle(ctx context.Context, itemID string) error {
	if a.fetcher == nil {
		return errors.New("title lookup is disabled in config")
	}
	var (
		item  model.Item
		found bool
	)
	if err := a.loop.Do(ctx, func(s *dump.Store) { item, _, found = s.FindItem(itemID) }); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("item not found: %s", itemID)
	}
	if item.Type != model.ItemLink {
		return fmt.Errorf("item %s is not a link", itemID)
	}
	a.loop.FetchTitle(ctx, a.fetcher, itemID, item.Content)
	return nil
}

// DeleteCanvas removes a canvas, refusing the Inbox.
func (a *DumpApp) DeleteCanvas(ctx context.Context, id string) error {
	var err error
	doErr := a.loop.Do(ctx, func(s *dump.Store) {
		c := s.FindCanvas(id)
		if c == nil {
			err = fmt.Errorf("canvas not found: %s", id)
			return
		}
		if c.Name == dump.InboxName {
			err = ErrInboxProtected
			return
		}
		s.DeleteCanvas(id)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Backup validates the vault and uploads the current tree as this host's snapshot.
func (a *DumpApp) Backup(ctx context.Context, encrypt bool) (int64, error) {
	if a.vault == nil {
		return 0, ErrNoVault
	}
	if err := a.vault.ValidateSetup(); err != nil {
		return 0, fmt.Errorf("validating vault: %w", err)
	}

	var (
		version int64
		err     error
	)
	if doErr := a.loop.Do(ctx, func(*dump.Store) {
		version, err = a.backup.Backup(a.cfg.HostID, encrypt)
	}); doErr != nil {
		return 0, doErr
	}
	return version, err
}

// Restore replaces the tree with this host's snapshot. passphrase is only
// called when the snapshot is encrypted.
func (a *DumpApp) Restore(ctx context.Context, passphrase func() (string, error)) error {
	if a.vault == nil {
		return ErrNoVault
	}

	encrypted, err := a.backup.IsEncrypted(a.cfg.HostID)
	if err != nil {
		return err
	}

	var decryptCtx dump.DecryptionContext
	if encrypted {
		if !a.encryptor.IsConfigured() {
			return errors.New("snapshot is encrypted but no keys are configured")
		}
		pass, err := passphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		decryptCtx, err = a.encryptor.Unlock(pass)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
	}

	if doErr := a.loop.Do(ctx, func(*dump.Store) {
		err = a.backup.Restore(a.cfg.HostID, decryptCtx)
	}); doErr != nil {
		return doErr
	}
	return err
}

// SetupKeys generates the snapshot encryption key pair.
func (a *DumpApp) SetupKeys(passphrase string) error {
	if err := a.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption keys: %w", err)
	}
	return nil
}

// History returns up to limit recent journal entries, newest first.
func (a *DumpApp) History(limit int) ([]*model.Operation, error) {
	return a.backup.History(limit)
}

// Close closes the journal and the log file.
func (a *DumpApp) Close() error {
	var firstErr error
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
