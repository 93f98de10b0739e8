package route

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"devevents/src-server/utils"
)

// SPA serves the web client from STATIC_WEB_CLIENT_DIR, falling back to
// index.html for unknown paths. Does nothing when the dir isn't set.
func SPA(muxer *http.ServeMux, as *utils.AppState) {
	if as.Config.GetStaticWebClientDir() == "" {
		return
	}
	files := http.FS(os.DirFS(as.Config.GetStaticWebClientDir()))
	indexFile, err := files.Open("index.html")
	if err != nil {
		slog.Error("Can't open index.html", "err", err)
		return
	}
	indexFile.Close()

	muxer.HandleFunc("GET /{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		filepath := filepath.Clean(r.PathValue("filepath"))
		switch filepath {
		case ".":
			filepath = "index.html"
		case "200":
			filepath = "200.html"
		case "404":
			filepath = "404.html"
		}

		file, err := files.Open(filepath)
		if err == nil {
			defer file.Close()
			if stat, err := file.Stat(); err == nil && !stat.IsDir() {
				http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
				return
			}
		}

		indexFile, err := files.Open("index.html")
		if err != nil {
			http.Error(w, "Can't open index.html", http.StatusInternalServerError)
			return
		}
		defer indexFile.Close()
		indexFileStat, err := indexFile.Stat()
		if err != nil {
			http.Error(w, "Can't get index.html stat", http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, r, indexFileStat.Name(), indexFileStat.ModTime(), indexFile)
	})
}
