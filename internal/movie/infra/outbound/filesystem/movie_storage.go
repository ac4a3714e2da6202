package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	"github.com/google/uuid"
)

const (
	TempFolder  = "temp"
	MovieFolder = "movie"
	movieExt    = ".mp4"
)

// MovieFileStorage es un adaptador outbound que guarda los vídeos en disco,
// bajo <root>/temp al subirlos y <root>/movie al crear la película.
type MovieFileStorage struct {
	root string
	mu   sync.Mutex // Serializa los renombrados entre temp y movie.
}

func NewMovieFileStorage(root string) (*MovieFileStorage, error) {
	for _, dir := range []string{TempFolder, MovieFolder} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("could not create media folder %s: %w", dir, err)
		}
	}
	return &MovieFileStorage{root: root}, nil
}

// SaveTemp copia el vídeo a temp con un nombre nuevo y lo devuelve.
func (s *MovieFileStorage) SaveTemp(ctx context.Context, r io.Reader) (string, error) {
	name := uuid.New().String() + movieExt
	path := filepath.Join(s.root, TempFolder, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return name, nil
}

// Promote mueve el fichero de temp a movie.
func (s *MovieFileStorage) Promote(ctx context.Context, fileName string) (string, error) {
	if err := validName(fileName); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from := filepath.Join(s.root, TempFolder, fileName)
	if _, err := os.Stat(from); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", movieDomain.ErrMovieFileNotFound, fileName)
		}
		return "", err
	}
	if err := os.Rename(from, filepath.Join(s.root, MovieFolder, fileName)); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(MovieFolder, fileName)), nil
}

// Demote devuelve el fichero a temp.
func (s *MovieFileStorage) Demote(ctx context.Context, fileName string) error {
	if err := validName(fileName); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.Rename(filepath.Join(s.root, MovieFolder, fileName), filepath.Join(s.root, TempFolder, fileName))
}

// validName evita salir de la carpeta de medios con "../".
func validName(fileName string) error {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.ContainsAny(fileName, `/\`) {
		return fmt.Errorf("%w: %q", movieDomain.ErrInvalidMovieFile, fileName)
	}
	if !strings.EqualFold(filepath.Ext(fileName), movieExt) {
		return fmt.Errorf("%w: only %s files are accepted", movieDomain.ErrInvalidMovieFile, movieExt)
	}
	return nil
}

var _ movieDomain.MovieFileStorage = (*MovieFileStorage)(nil)
