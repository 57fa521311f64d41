package util

var GLOBAL_LOG_LEVEL = LogLevelInfo
var GLOBAL_LOG_CATEGORIES = LogTiles | LogCodec | LogAssets | LogIO | LogMap

type LogLevel int

const (
	LogLevelError LogLevel = 1 << iota
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

type LogCategory int

const (
	LogTiles LogCategory = 1 << iota
	LogCodec
	LogAssets
	LogIO
	LogMap
)

func log(cat LogCategory, lvl LogLevel, txt string) {
	if lvl > GLOBAL_LOG_LEVEL {
		return
	}
	if GLOBAL_LOG_CATEGORIES&cat == 0 {
		return
	}
	println(txt)
}

func LogTilesInfo(txt string) {
	log(LogTiles, LogLevelInfo, txt)
}

func LogTilesDebug(txt string) {
	log(LogTiles, LogLevelDebug, txt)
}

func LogTilesError(txt string) {
	log(LogTiles, LogLevelError, txt)
}

func LogCodecDebug(txt string) {
	log(LogCodec, LogLevelDebug, txt)
}

func LogCodecError(txt string) {
	log(LogCodec, LogLevelError, txt)
}

func LogAssetsInfo(txt string) {
	log(LogAssets, LogLevelInfo, txt)
}

func LogAssetsDebug(txt string) {
	log(LogAssets, LogLevelDebug, txt)
}

func LogAssetsWarning(txt string) {
	log(LogAssets, LogLevelWarning, txt)
}

func LogAssetsError(txt string) {
	log(LogAssets, LogLevelError, txt)
}

func LogIOInfo(txt string) {
	log(LogIO, LogLevelInfo, txt)
}

func LogIOError(txt string) {
	log(LogIO, LogLevelError, txt)
}

func LogMapInfo(txt string) {
	log(LogMap, LogLevelInfo, txt)
}

func LogMapDebug(txt string) {
	log(LogMap, LogLevelDebug, txt)
}

func LogMapWarning(txt string) {
	log(LogMap, LogLevelWarning, txt)
}
