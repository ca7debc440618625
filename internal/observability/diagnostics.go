package observability

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/dto"
)

// WriteDiagnosticsZip 状态快照 + 配置 + 最近日志，不包含数据库
func WriteDiagnosticsZip(ctx context.Context, w io.Writer, core *bootstrap.Core, cfgPath string, startedAt time.Time) error {
	status, err := BuildStatus(ctx, core, startedAt)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	defer zw.Close()

	_ = addZipJSON(zw, "status.json", status)
	_ = addZipText(zw, "README.txt", buildDiagReadme())

	if strings.TrimSpace(cfgPath) != "" {
		if b, err := os.ReadFile(cfgPath); err == nil {
			_ = addZipText(zw, "config/config.yaml", string(b))
		} else {
			_ = addZipText(zw, "config/ERROR.txt", "读取配置失败: "+err.Error())
		}
	}

	logPath := strings.TrimSpace(core.Cfg.App.LogPath)
	if logPath != "" {
		lines, err := tailLines(logPath, 512*1024)
		if err != nil {
			_ = addZipText(zw, "logs/ERROR.txt", "读取日志失败: "+err.Error())
		} else {
			if len(lines) > 2000 {
				lines = lines[len(lines)-2000:]
			}
			_ = addZipText(zw, "logs/recent.log", strings.Join(lines, "\n"))
		}
	}
	return nil
}

// ReadRecentErrors 从日志尾部倒序取 WARN/ERROR 行
func ReadRecentErrors(logPath string, limit int) []dto.RecentErrorDTO {
	path := strings.TrimSpace(logPath)
	if path == "" {
		return nil
	}
	lines, err := tailLines(path, 256*1024)
	if err != nil {
		return []dto.RecentErrorDTO{{Message: "读取日志失败: " + err.Error()}}
	}

	if limit <= 0 {
		limit = 20
	}

	out := make([]dto.RecentErrorDTO, 0, limit)
	for i := len(lines) - 1; i >= 0 && len(out) < limit; i-- {
		raw := strings.TrimSpace(lines[i])
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "level=ERROR") && !strings.Contains(raw, "level=WARN") {
			continue
		}
		out = append(out, parseLogLine(raw))
	}
	return out
}

func buildDiagReadme() string {
	return strings.TrimSpace(`
该诊断包不包含数据库与训练记录。

包含：
- status.json：/api/status 快照
- config/config.yaml：配置文件（如存在）
- logs/recent.log：最近日志（截断）`) + "\n"
}

func addZipText(zw *zip.Writer, name string, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(content))
	return err
}

func addZipJSON(zw *zip.Writer, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return addZipText(zw, name, string(b)+"\n")
}

func tailLines(path string, maxBytes int64) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := st.Size()
	start := int64(0)
	if size > maxBytes {
		start = size - maxBytes
	}
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			return nil, err
		}
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	s := string(b)
	if start > 0 {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n"), nil
}
