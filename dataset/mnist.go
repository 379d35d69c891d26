package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
)

// Размеры изображений MNIST
const (
	ImageSize  = 28
	NumPixels  = ImageSize * ImageSize // 784
	NumClasses = 10
)

// Зеркало с оригинальными файлами MNIST
const baseURL = "https://storage.googleapis.com/cvdf-datasets/mnist/"

// Имена файлов датасета
const (
	trainImagesFile = "train-images-idx3-ubyte.gz"
	trainLabelsFile = "train-labels-idx1-ubyte.gz"
	testImagesFile  = "t10k-images-idx3-ubyte.gz"
	testLabelsFile  = "t10k-labels-idx1-ubyte.gz"
)

// Магические числа формата IDX
const (
	imagesMagic = 2051
	labelsMagic = 2049
)

// Dataset представляет набор изображений с метками.
// Пиксели нормализованы в диапазон [0, 1]
type Dataset struct {
	Images [][]float64
	Labels []int
}

// Load загружает обучающий и тестовый наборы MNIST.
// Отсутствующие файлы скачиваются в директорию dir
func Load(dir string) (*Dataset, *Dataset, error) {
	train, err := loadPair(dir, trainImagesFile, trainLabelsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка загрузки обучающего набора: %v", err)
	}

	test, err := loadPair(dir, testImagesFile, testLabelsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка загрузки тестового набора: %v", err)
	}

	return train, test, nil
}

// loadPair загружает пару файлов изображения+метки
func loadPair(dir, imagesName, labelsName string) (*Dataset, error) {
	imagesPath, err := ensureFile(dir, imagesName)
	if err != nil {
		return nil, err
	}
	labelsPath, err := ensureFile(dir, labelsName)
	if err != nil {
		return nil, err
	}

	images, err := readImagesFile(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %v", imagesName, err)
	}
	labels, err := readLabelsFile(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %v", labelsName, err)
	}

	if len(images) != len(labels) {
		return nil, fmt.Errorf("количество изображений (%d) не совпадает с количеством меток (%d)",
			len(images), len(labels))
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

// ensureFile проверяет наличие файла и скачивает его при отсутствии
func ensureFile(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("не удалось создать директорию: %v", err)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	url := baseURL + name
	fmt.Printf("Скачивание %s...\n", url)
	if err := download(url, path); err != nil {
		return "", fmt.Errorf("не удалось скачать %s: %v", url, err)
	}

	return path, nil
}

// download скачивает файл по URL
func download(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул статус %s", resp.Status)
	}

	// Скачиваем во временный файл, чтобы при обрыве
	// не остался испорченный кеш
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// readImagesFile читает gzip-сжатый IDX файл с изображениями
func readImagesFile(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("не удалось распаковать gzip: %v", err)
	}
	defer gz.Close()

	return ReadImages(gz)
}

// readLabelsFile читает gzip-сжатый IDX файл с метками
func readLabelsFile(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("не удалось распаковать gzip: %v", err)
	}
	defer gz.Close()

	return ReadLabels(gz)
}

// ReadImages разбирает IDX поток с изображениями (magic 2051).
// Пиксели нормализуются делением на 255
func ReadImages(r io.Reader) ([][]float64, error) {
	var header struct {
		Magic int32
		Count int32
		Rows  int32
		Cols  int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("не удалось прочитать заголовок: %v", err)
	}

	if header.Magic != imagesMagic {
		return nil, fmt.Errorf("неверное магическое число %d, ожидалось %d", header.Magic, imagesMagic)
	}
	if header.Count < 0 {
		return nil, fmt.Errorf("недопустимое количество изображений %d", header.Count)
	}
	if header.Rows != ImageSize || header.Cols != ImageSize {
		return nil, fmt.Errorf("неверный размер изображения %dx%d, ожидалось %dx%d",
			header.Rows, header.Cols, ImageSize, ImageSize)
	}

	images := make([][]float64, header.Count)
	buf := make([]byte, NumPixels)
	for i := range images {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("не удалось прочитать изображение %d: %v", i, err)
		}
		pixels := make([]float64, NumPixels)
		for j, b := range buf {
			pixels[j] = float64(b) / 255.0
		}
		images[i] = pixels
	}

	return images, nil
}

// ReadLabels разбирает IDX поток с метками (magic 2049)
func ReadLabels(r io.Reader) ([]int, error) {
	var header struct {
		Magic int32
		Count int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("не удалось прочитать заголовок: %v", err)
	}

	if header.Magic != labelsMagic {
		return nil, fmt.Errorf("неверное магическое число %d, ожидалось %d", header.Magic, labelsMagic)
	}
	if header.Count < 0 {
		return nil, fmt.Errorf("недопустимое количество меток %d", header.Count)
	}

	buf := make([]byte, header.Count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("не удалось прочитать метки: %v", err)
	}

	labels := make([]int, header.Count)
	for i, b := range buf {
		if b > 9 {
			return nil, fmt.Errorf("недопустимая метка %d на позиции %d", b, i)
		}
		labels[i] = int(b)
	}

	return labels, nil
}

// Len возвращает количество примеров в наборе
func (d *Dataset) Len() int {
	return len(d.Images)
}

// OneHot возвращает one-hot вектор для метки примера i
func (d *Dataset) OneHot(i int) []float64 {
	return OneHotLabel(d.Labels[i])
}

// OneHotLabel преобразует цифру в one-hot вектор из 10 элементов
func OneHotLabel(label int) []float64 {
	vector := make([]float64, NumClasses)
	if label >= 0 && label < NumClasses {
		vector[label] = 1.0
	}
	return vector
}

// Shuffle перемешивает набор на месте
func (d *Dataset) Shuffle() {
	rand.Shuffle(len(d.Images), func(i, j int) {
		d.Images[i], d.Images[j] = d.Images[j], d.Images[i]
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	})
}

// Subset возвращает первые n примеров набора (без копирования данных).
// Используется для быстрой оценки точности на части обучающего набора
func (d *Dataset) Subset(n int) *Dataset {
	if n > d.Len() {
		n = d.Len()
	}
	return &Dataset{
		Images: d.Images[:n],
		Labels: d.Labels[:n],
	}
}

// Batch возвращает примеры [start, end) вместе с one-hot метками
func (d *Dataset) Batch(start, end int) ([][]float64, [][]float64) {
	if end > d.Len() {
		end = d.Len()
	}
	inputs := d.Images[start:end]
	targets := make([][]float64, end-start)
	for i := start; i < end; i++ {
		targets[i-start] = d.OneHot(i)
	}
	return inputs, targets
}
