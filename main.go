package main

import (
	"flag"
	"fmt"
	"os"

	"mnist-ai/classifier"
	"mnist-ai/database"
	"mnist-ai/dataset"
	"mnist-ai/neural"
	"mnist-ai/stats"
	"mnist-ai/trainer"
	"mnist-ai/ui"
)

func main() {
	// Определяем флаги командной строки
	trainMode := flag.Bool("train", false, "Запустить обучение сети")
	evaluateMode := flag.Bool("evaluate", false, "Оценить точность на тестовом наборе")
	epochs := flag.Int("epochs", 10, "Количество эпох обучения")
	batchSize := flag.Int("batch", 32, "Размер пакета")
	exportPath := flag.String("export", "", "Экспортировать веса в JSON файл")
	importPath := flag.String("import", "", "Импортировать веса из JSON файла")
	dataDir := flag.String("data", "data/mnist", "Директория для кеша датасета")
	dbPath := flag.String("db", "data/training.db", "Путь к базе данных")
	port := flag.Int("port", 8080, "Порт веб-сервера")
	flag.Parse()

	if *trainMode {
		runTrain(*epochs, *batchSize, *dataDir, *dbPath)
	} else if *evaluateMode {
		runEvaluate(*dataDir)
	} else if *exportPath != "" {
		runExport(*exportPath)
	} else if *importPath != "" {
		runImport(*importPath)
	} else {
		runWeb(*dataDir, *dbPath, *port)
	}
}

func runTrain(epochs, batchSize int, dataDir, dbPath string) {
	fmt.Println("=== Режим обучения нейросети ===")

	// Валидация параметров
	if epochs <= 0 {
		fmt.Printf("Ошибка: количество эпох должно быть больше нуля (указано: %d)\n", epochs)
		os.Exit(1)
	}
	if batchSize <= 0 {
		fmt.Printf("Ошибка: размер пакета должен быть больше нуля (указано: %d)\n", batchSize)
		os.Exit(1)
	}

	// Загружаем датасет
	trainSet, testSet, err := dataset.Load(dataDir)
	if err != nil {
		fmt.Printf("Ошибка при загрузке датасета: %v\n", err)
		os.Exit(1)
	}

	// Создаем соединение с базой данных
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		fmt.Printf("Ошибка при создании базы данных: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Создаем менеджер обучения
	network := neural.NewNetwork()
	manager := trainer.NewTrainingManager(network, trainSet, testSet, db, stats.NewStatistics())

	// Запускаем обучение
	err = manager.Train(epochs, batchSize, true)
	if err != nil {
		fmt.Printf("Ошибка во время обучения: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nОбучение успешно завершено!")
}

func runEvaluate(dataDir string) {
	fmt.Println("=== Оценка точности сети ===")

	_, testSet, err := dataset.Load(dataDir)
	if err != nil {
		fmt.Printf("Ошибка при загрузке датасета: %v\n", err)
		os.Exit(1)
	}

	cl := classifier.NewClassifier()

	accuracy := cl.Accuracy(testSet)
	fmt.Printf("Точность на тестовом наборе (%d примеров): %.2f%%\n",
		testSet.Len(), accuracy*100)

	// Печатаем матрицу ошибок
	matrix := cl.Network.ConfusionMatrix(testSet.Images, testSet.Labels)
	fmt.Println("\nМатрица ошибок (строка — истинная цифра, столбец — предсказанная):")
	fmt.Print("     ")
	for i := 0; i < 10; i++ {
		fmt.Printf("%6d", i)
	}
	fmt.Println()
	for i := 0; i < 10; i++ {
		fmt.Printf("  %d: ", i)
		for j := 0; j < 10; j++ {
			fmt.Printf("%6d", matrix[i][j])
		}
		fmt.Println()
	}
}

func runExport(path string) {
	fmt.Println("=== Экспорт весов в JSON ===")

	network := neural.NewNetwork()
	if err := network.ExportJSON(path); err != nil {
		fmt.Printf("Ошибка при экспорте весов: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Веса сохранены в %s\n", path)
}

func runImport(path string) {
	fmt.Println("=== Импорт весов из JSON ===")

	network := neural.NewNetwork()
	if err := network.ImportJSON(path); err != nil {
		fmt.Printf("Ошибка при импорте весов: %v\n", err)
		os.Exit(1)
	}

	// Сохраняем импортированные веса как основной чекпоинт
	if err := network.Save(); err != nil {
		fmt.Printf("Ошибка при сохранении чекпоинта: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Веса загружены из %s и сохранены в основной чекпоинт\n", path)
}

func runWeb(dataDir, dbPath string, port int) {
	fmt.Println("=== Распознавание рукописных цифр ===")
	fmt.Println("Запуск веб-сервера...")
	fmt.Printf("Откройте браузер на http://localhost:%d\n", port)

	cl := classifier.NewClassifier()
	statistics := stats.NewStatistics()

	// Подключаем базу данных
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		fmt.Printf("Ошибка при создании базы данных: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	cl.SetDatabase(db, true)

	// Датасет нужен только для обучения через веб-интерфейс,
	// поэтому ошибка загрузки не фатальна
	trainSet, testSet, err := dataset.Load(dataDir)
	if err != nil {
		fmt.Printf("Предупреждение: датасет недоступен, обучение через веб отключено: %v\n", err)
		trainSet, testSet = nil, nil
	}

	webUI := ui.NewWebUI(cl, statistics, db, trainSet, testSet)
	if err := webUI.Start(port); err != nil {
		fmt.Printf("Ошибка веб-сервера: %v\n", err)
		os.Exit(1)
	}
}
