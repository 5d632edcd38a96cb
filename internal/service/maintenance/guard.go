package maintenance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alexflint/go-filemutex"

	"lac1tool/internal/domain/models"
)

// Guard допускает одну операцию за раз: в процессе - мьютекс, между
// процессами - файловая блокировка на порт в lockDir.
type Guard struct {
	mu      sync.Mutex
	lockDir string
}

// NewGuard создает Guard. Пустой lockDir отключает межпроцессную блокировку.
func NewGuard(lockDir string) *Guard {
	return &Guard{lockDir: lockDir}
}

// Acquire захватывает право на операцию с портом key. Занято - ErrBusy.
func (g *Guard) Acquire(op models.Operation, key string) (release func(), err error) {
	if !g.mu.TryLock() {
		return nil, &models.OperationError{Kind: models.ErrBusy, Op: op,
			Err: errors.New("уже выполняется другая операция")}
	}
	if g.lockDir == "" {
		return g.mu.Unlock, nil
	}

	if err := os.MkdirAll(g.lockDir, 0755); err != nil {
		g.mu.Unlock()
		return nil, &models.OperationError{Kind: models.ErrFileAccess, Op: op, Err: err}
	}
	fm, err := filemutex.New(filepath.Join(g.lockDir, LockName(key)))
	if err != nil {
		g.mu.Unlock()
		return nil, &models.OperationError{Kind: models.ErrFileAccess, Op: op, Err: err}
	}
	if err := fm.TryLock(); err != nil {
		fm.Close()
		g.mu.Unlock()
		if errors.Is(err, filemutex.AlreadyLocked) {
			return nil, &models.OperationError{Kind: models.ErrBusy, Op: op,
				Err: fmt.Errorf("порт %s занят другим процессом", key)}
		}
		return nil, &models.OperationError{Kind: models.ErrFileAccess, Op: op, Err: err}
	}

	return func() {
		fm.Unlock()
		fm.Close()
		g.mu.Unlock()
	}, nil
}

// LockName - имя файла блокировки для порта.
func LockName(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", ".", "_", " ", "_")
	return "lac1-" + strings.Trim(r.Replace(key), "_") + ".lock"
}
