package filestorage

import "io"

// FileStorageInterface - хранилище для загружаемых файлов (логотипы брендинга и т.п.).
type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(filePath string) error
}
