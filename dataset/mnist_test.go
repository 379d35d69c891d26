package dataset

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// makeImagesStream собирает синтетический IDX поток с изображениями
func makeImagesStream(t *testing.T, magic, count int32, pixel byte) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	header := []int32{magic, count, ImageSize, ImageSize}
	for _, v := range header {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("Не удалось записать заголовок: %v", err)
		}
	}
	for i := int32(0); i < count; i++ {
		buf.Write(bytes.Repeat([]byte{pixel}, NumPixels))
	}
	return buf
}

// makeLabelsStream собирает синтетический IDX поток с метками
func makeLabelsStream(t *testing.T, magic int32, labels []byte) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.BigEndian, magic); err != nil {
		t.Fatalf("Не удалось записать заголовок: %v", err)
	}
	if err := binary.Write(buf, binary.BigEndian, int32(len(labels))); err != nil {
		t.Fatalf("Не удалось записать заголовок: %v", err)
	}
	buf.Write(labels)
	return buf
}

// TestReadImages проверяет разбор IDX потока с изображениями
func TestReadImages(t *testing.T) {
	images, err := ReadImages(makeImagesStream(t, 2051, 3, 255))
	if err != nil {
		t.Fatalf("ReadImages() failed: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("Ожидалось 3 изображения, получено %d", len(images))
	}

	for i, img := range images {
		if len(img) != NumPixels {
			t.Errorf("Изображение %d: ожидалось %d пикселей, получено %d", i, NumPixels, len(img))
		}
		if img[0] != 1.0 {
			t.Errorf("Ожидался нормализованный пиксель 1.0, получено %f", img[0])
		}
	}
}

// TestReadImagesBadMagic проверяет реакцию на неверное магическое число
func TestReadImagesBadMagic(t *testing.T) {
	_, err := ReadImages(makeImagesStream(t, 1234, 1, 0))
	if err == nil {
		t.Error("Expected error for bad magic, got nil")
	}
}

// TestReadImagesNegativeCount проверяет реакцию на отрицательное
// количество изображений в заголовке
func TestReadImagesNegativeCount(t *testing.T) {
	_, err := ReadImages(makeImagesStream(t, 2051, -1, 0))
	if err == nil {
		t.Error("Expected error for negative count, got nil")
	}
}

// TestReadImagesTruncated проверяет реакцию на обрезанный поток
func TestReadImagesTruncated(t *testing.T) {
	buf := makeImagesStream(t, 2051, 2, 0)
	truncated := bytes.NewBuffer(buf.Bytes()[:buf.Len()-100])

	_, err := ReadImages(truncated)
	if err == nil {
		t.Error("Expected error for truncated stream, got nil")
	}
}

// TestReadLabels проверяет разбор IDX потока с метками
func TestReadLabels(t *testing.T) {
	labels, err := ReadLabels(makeLabelsStream(t, 2049, []byte{0, 5, 9}))
	if err != nil {
		t.Fatalf("ReadLabels() failed: %v", err)
	}

	expected := []int{0, 5, 9}
	if len(labels) != len(expected) {
		t.Fatalf("Ожидалось %d меток, получено %d", len(expected), len(labels))
	}
	for i, l := range labels {
		if l != expected[i] {
			t.Errorf("Метка %d: ожидалось %d, получено %d", i, expected[i], l)
		}
	}
}

// TestReadLabelsBadMagic проверяет реакцию на неверное магическое число
func TestReadLabelsBadMagic(t *testing.T) {
	_, err := ReadLabels(makeLabelsStream(t, 2051, []byte{1}))
	if err == nil {
		t.Error("Expected error for bad magic, got nil")
	}
}

// TestReadLabelsNegativeCount проверяет реакцию на отрицательное
// количество меток в заголовке
func TestReadLabelsNegativeCount(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, int32(2049))
	binary.Write(buf, binary.BigEndian, int32(-5))

	_, err := ReadLabels(buf)
	if err == nil {
		t.Error("Expected error for negative count, got nil")
	}
}

// TestReadLabelsInvalidLabel проверяет реакцию на недопустимую метку
func TestReadLabelsInvalidLabel(t *testing.T) {
	_, err := ReadLabels(makeLabelsStream(t, 2049, []byte{3, 17}))
	if err == nil {
		t.Error("Expected error for label > 9, got nil")
	}
}

// TestOneHotLabel проверяет one-hot кодирование
func TestOneHotLabel(t *testing.T) {
	testCases := []struct {
		label    int
		hotIndex int
	}{
		{label: 0, hotIndex: 0},
		{label: 4, hotIndex: 4},
		{label: 9, hotIndex: 9},
	}

	for _, tc := range testCases {
		vector := OneHotLabel(tc.label)
		if len(vector) != NumClasses {
			t.Fatalf("Ожидалось %d элементов, получено %d", NumClasses, len(vector))
		}
		for i, v := range vector {
			if i == tc.hotIndex && v != 1.0 {
				t.Errorf("OneHotLabel(%d)[%d] = %f, ожидалось 1.0", tc.label, i, v)
			}
			if i != tc.hotIndex && v != 0.0 {
				t.Errorf("OneHotLabel(%d)[%d] = %f, ожидалось 0.0", tc.label, i, v)
			}
		}
	}
}

// TestShuffle проверяет, что перемешивание сохраняет связь
// между изображением и меткой
func TestShuffle(t *testing.T) {
	d := &Dataset{}
	for i := 0; i < 50; i++ {
		img := make([]float64, NumPixels)
		img[0] = float64(i)
		d.Images = append(d.Images, img)
		d.Labels = append(d.Labels, i%10)
	}

	d.Shuffle()

	if d.Len() != 50 {
		t.Fatalf("Ожидалось 50 примеров после перемешивания, получено %d", d.Len())
	}

	for i := range d.Images {
		original := int(d.Images[i][0])
		if d.Labels[i] != original%10 {
			t.Fatalf("Пример %d: метка %d не соответствует изображению %d",
				i, d.Labels[i], original)
		}
	}
}

// TestBatch проверяет выдачу пакетов
func TestBatch(t *testing.T) {
	d := &Dataset{}
	for i := 0; i < 10; i++ {
		d.Images = append(d.Images, make([]float64, NumPixels))
		d.Labels = append(d.Labels, i)
	}

	inputs, targets := d.Batch(0, 4)
	if len(inputs) != 4 || len(targets) != 4 {
		t.Errorf("Ожидался пакет из 4 примеров, получено %d/%d", len(inputs), len(targets))
	}

	// Последний пакет может быть неполным
	inputs, targets = d.Batch(8, 12)
	if len(inputs) != 2 || len(targets) != 2 {
		t.Errorf("Ожидался пакет из 2 примеров, получено %d/%d", len(inputs), len(targets))
	}

	// One-hot метки должны соответствовать меткам набора
	if targets[0][8] != 1.0 || targets[1][9] != 1.0 {
		t.Error("One-hot метки пакета не соответствуют меткам набора")
	}
}

// TestSubset проверяет выдачу части набора
func TestSubset(t *testing.T) {
	d := &Dataset{}
	for i := 0; i < 10; i++ {
		d.Images = append(d.Images, make([]float64, NumPixels))
		d.Labels = append(d.Labels, i)
	}

	sub := d.Subset(3)
	if sub.Len() != 3 {
		t.Errorf("Ожидалось 3 примера, получено %d", sub.Len())
	}

	// Запрос больше размера набора возвращает весь набор
	sub = d.Subset(100)
	if sub.Len() != 10 {
		t.Errorf("Ожидалось 10 примеров, получено %d", sub.Len())
	}
}
