package utils

import (
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/cppla/famfit/config"
)

var (
	// Logger is the process-wide application logger, set by InitLogger.
	Logger = zap.NewNop()
	// Sugar is Logger's sugared form for printf-style call sites.
	Sugar = Logger.Sugar()
)

// RotationConfig describes one lumberjack-backed log file.
type RotationConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (r RotationConfig) writer() (zapcore.WriteSyncer, error) {
	if dir := filepath.Dir(r.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   r.Path,
		MaxSize:    orDefault(r.MaxSizeMB, 100),
		MaxBackups: orDefault(r.MaxBackups, 3),
		MaxAge:     orDefault(r.MaxAgeDays, 7),
		Compress:   r.Compress,
	}), nil
}

// InitLogger builds the application logger: JSON to stdout and, when LogPath
// is set, JSON to a rotating file at the same level.
func InitLogger(cfg config.AppConfig) error {
	level := parseLevel(cfg.LogLevel)
	enc := zapcore.NewJSONEncoder(encoderConfig())
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), level)}

	if cfg.LogPath != "" {
		ws, err := RotationConfig{
			Path:       cfg.LogPath,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
			Compress:   cfg.LogCompress,
		}.writer()
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(enc.Clone(), ws, level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if level == zapcore.DebugLevel {
		opts = append(opts, zap.Development())
	}
	Logger = zap.New(zapcore.NewTee(cores...), opts...)
	Sugar = Logger.Sugar()
	return nil
}

// NewRollingFileLogger builds a logger that writes only to a rotating file.
// The gin access log uses it so request lines stay out of the application log.
func NewRollingFileLogger(r RotationConfig, level string) (*zap.Logger, error) {
	ws, err := r.writer()
	if err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, parseLevel(level))), nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	return cfg
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Ginzap logs every request once it has been handled. 5xx responses and
// handler errors are logged at error level, 4xx at warn.
func Ginzap(logger *zap.Logger, requestIDKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case len(c.Errors) > 0:
			logger.Error(c.Errors.String(), fields...)
		case status >= http.StatusInternalServerError:
			logger.Error(path, fields...)
		case status >= http.StatusBadRequest:
			logger.Warn(path, fields...)
		default:
			logger.Info(path, fields...)
		}
	}
}

// RecoveryWithZap turns panics into the 500 envelope and logs them.
// Broken client connections are logged without writing a response.
func RecoveryWithZap(logger *zap.Logger, stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			dump, _ := httputil.DumpRequest(c.Request, false)
			fields := []zap.Field{zap.Any("error", err), zap.String("request", string(dump))}
			if stack {
				fields = append(fields, zap.ByteString("stack", debug.Stack()))
			}
			logger.Error("recovered from panic", fields...)
			if isBrokenPipe(err) {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, JSONResponse{Code: 50000, Message: "internal server error"})
		}()
		c.Next()
	}
}

func isBrokenPipe(v any) bool {
	ne, ok := v.(*net.OpError)
	if !ok {
		return false
	}
	se, ok := ne.Err.(*os.SyscallError)
	if !ok {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
