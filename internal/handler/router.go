package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gallery/internal/image"
	"github.com/hitoshi/gallery/internal/metrics"
	"github.com/hitoshi/gallery/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string

	// 監視
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface

	// 画像
	ImageService ImageServiceInterface
	UploadDir    string

	// フロントエンドの静的ファイル。空の場合は配信しない
	StaticDir string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → Metrics → SecurityHeaders → CORS → (/api のみ) Auth
//
// 認証ルート（/auth/*）、ヘルスチェック、メトリクス、アップロード画像の配信は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	var rejections middleware.RejectionRecorder
	if deps.Metrics != nil {
		rejections = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService)
	imageHandler := NewImageHandler(deps.ImageService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	if deps.UploadDir != "" {
		r.Handle(image.PublicPathPrefix+"*", http.StripPrefix(image.PublicPathPrefix, fileServer(deps.UploadDir)))
	}

	// --- 認証が必要なルート ---
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, rejections))

		r.Route("/images", func(r chi.Router) {
			r.Get("/", imageHandler.ListImages)
			r.Post("/", imageHandler.UploadImage)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", imageHandler.GetImage)
				r.Patch("/", imageHandler.RenameImage)
			})
		})
	})

	if deps.StaticDir != "" {
		if info, err := os.Stat(deps.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", spaHandler(deps.StaticDir))
		} else {
			logger.Warn("static directory not found, frontend will not be served",
				slog.String("dir", deps.StaticDir),
			)
		}
	}

	return r
}

// fileServer はディレクトリ一覧を返さないファイルサーバーを返す。
// ディレクトリへのリクエストはindex.htmlがある場合のみ応答する。
func fileServer(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			index := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)), "index.html")
			if _, err := os.Stat(index); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// spaHandler はフロントエンドの静的ファイルを配信する。
// 拡張子のないパスに該当ファイルがない場合は、クライアント側のルートとみなしてindex.htmlを返す。
// /apiと/uploadsは別ルートで処理されるため、ここには到達しない。
func spaHandler(dir string) http.Handler {
	files := fileServer(dir)
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && clean != "/" && path.Ext(clean) == "" {
			_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean)))
			if errors.Is(err, fs.ErrNotExist) {
				http.ServeFile(w, r, index)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
