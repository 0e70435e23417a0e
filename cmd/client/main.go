package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/pkg/term"
)

func main() {
	var serverAddr, expand, tz string
	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "Server address")
	flag.StringVar(&expand, "expand", "none", "Expand sections: all or none")
	flag.StringVar(&tz, "tz", time.Local.String(), "Timezone for timestamps")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Exactly one file path is required. Usage: client [flags] <file>")
	}
	path := flag.Arg(0)

	// Создание многочастной формы для загрузки файла
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("tz", tz); err != nil {
		log.Fatalf("Не удалось записать поле формы: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Не удалось открыть файл %s: %v", path, err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		_ = file.Close()
		log.Fatalf("Не удалось создать файл формы для %s: %v", path, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		_ = file.Close()
		log.Fatalf("Не удалось записать данные файла %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		log.Printf("Warning: failed to close file %s: %v", path, err)
	}

	// Важно закрыть writer, чтобы записать завершающую границу
	if err := writer.Close(); err != nil {
		log.Fatalf("Не удалось закрыть multipart writer: %v", err)
	}

	resp, err := http.Post(serverAddr+"/api/v1/render?expand="+expand, writer.FormDataContentType(), &body)
	if err != nil {
		log.Fatalf("Не удалось отправить запрос: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp["error"] != "" {
			fmt.Fprintln(os.Stderr, errResp["error"])
			os.Exit(1)
		}
		log.Fatalf("Сервер вернул статус: %d", resp.StatusCode)
	}

	var doc domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		log.Fatalf("Не удалось декодировать ответ: %v", err)
	}

	opts := exporter.DefaultConsoleOptions()
	opts.Width = term.NewTerminal().Width()
	if err := exporter.NewConsoleExporter(opts).Export(os.Stdout, &doc); err != nil {
		log.Fatalf("Не удалось вывести разговор: %v", err)
	}
}
