package config

type WorkerKeyStruct struct {
	PersistDownloadsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistDownloadsQueue: "persist_downloads_queue",
}
