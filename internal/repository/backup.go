package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var sqliteHeader = []byte("SQLite format 3\x00")

// BackupFileName 默认导出文件名，如 fitness_backup_20250102_150405.db
func BackupFileName(t time.Time) string {
	return "fitness_backup_" + t.Format("20060102_150405") + ".db"
}

// ExportTo 合并 WAL 后原样复制数据库文件到 dst
func (d *Database) ExportTo(ctx context.Context, dst string) error {
	if d.path == "" {
		return fmt.Errorf("数据库路径未知，无法导出")
	}
	if err := d.Checkpoint(ctx); err != nil {
		return err
	}
	if err := copyFile(d.path, dst); err != nil {
		return fmt.Errorf("导出数据库失败: %w", err)
	}
	slog.Info("数据库已导出", "dst", dst)
	return nil
}

// ImportDatabase 用 src 覆盖 dbPath，调用方需保证数据库连接已关闭
func ImportDatabase(src, dbPath string) error {
	if err := validateSQLiteFile(src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	// 先复制到同目录临时文件，再原子替换
	staging := filepath.Join(filepath.Dir(dbPath), ".import-"+uuid.NewString()+".db")
	if err := copyFile(src, staging); err != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("复制导入文件失败: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			_ = os.Remove(staging)
			return fmt.Errorf("清理旧 WAL 文件失败: %w", err)
		}
	}
	if err := os.Rename(staging, dbPath); err != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("替换数据库失败: %w", err)
	}
	slog.Info("数据库已导入", "src", src, "dst", dbPath)
	return nil
}

func validateSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开导入文件失败: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, head); err != nil {
		return fmt.Errorf("不是有效的 SQLite 数据库文件: %s", path)
	}
	if !bytes.Equal(head, sqliteHeader) {
		return fmt.Errorf("不是有效的 SQLite 数据库文件: %s", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
