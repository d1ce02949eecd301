package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Action is what the command does with the decoded track.
type Action int

const (
	ActionDump Action = iota
	ActionExport
	ActionPlay
	ActionList
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ArchivePath string        // アーカイブのディレクトリ、またはトラックファイル
	Track       int           // トラック番号
	Format      string        // xmi または mod
	Pattern     string        // トラック番号からファイル名を作るパターン
	Output      string        // 出力ファイル（.wav / .mid）
	Action      Action        // 実行する処理
	SoundFont   string        // SoundFontファイルのパス
	Device      string        // MIDI出力デバイス名（部分一致）
	NoDevice    bool          // MIDIデバイスを使わない
	Tuning      string        // legacy または equal
	Timeout     time.Duration // 再生のタイムアウト（0は無制限）
	LogLevel    string        // ログレベル（debug, info, warn, error）
	LogFormat   string        // ログ形式（text, json）
	ShowHelp    bool          // ヘルプ表示フラグ
}

// boolFlags never consume the following argument.
var boolFlags = map[string]bool{
	"h": true, "help": true,
	"dump": true, "play": true, "list": true,
	"no-device": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("musdec", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var (
		timeoutSec       int
		dump, play, list bool
	)
	fs.IntVar(&config.Track, "track", 0, "トラック番号")
	fs.IntVar(&config.Track, "n", 0, "トラック番号（短縮形）")
	fs.StringVar(&config.Format, "format", "", "入力形式（xmi, mod）")
	fs.StringVar(&config.Pattern, "pattern", "", "トラックファイル名のパターン")
	fs.StringVar(&config.Output, "output", "", "出力ファイル（.wav, .mid）")
	fs.StringVar(&config.Output, "o", "", "出力ファイル（短縮形）")
	fs.BoolVar(&dump, "dump", false, "イベント一覧を表示")
	fs.BoolVar(&play, "play", false, "再生する")
	fs.BoolVar(&list, "list", false, "トラック一覧を表示")
	fs.StringVar(&config.SoundFont, "soundfont", "", "SoundFontファイル")
	fs.StringVar(&config.Device, "device", "", "MIDI出力デバイス名")
	fs.BoolVar(&config.NoDevice, "no-device", false, "MIDIデバイスを使わない")
	fs.StringVar(&config.Tuning, "tuning", "legacy", "音程テーブル（legacy, equal）")
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.LogFormat, "log-format", "text", "ログ形式（text, json）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	if config.ShowHelp {
		return config, nil
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if config.SoundFont == "" {
		config.SoundFont = os.Getenv("SOUNDFONT")
	}
	if config.Device == "" {
		config.Device = os.Getenv("MIDI_DEVICE")
	}
	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}
	if config.LogFormat != "text" && config.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", config.LogFormat)
	}
	if config.Tuning != "legacy" && config.Tuning != "equal" {
		return nil, fmt.Errorf("invalid tuning: %s (must be legacy or equal)", config.Tuning)
	}
	if config.Track < 0 {
		return nil, fmt.Errorf("track must be non-negative, got %d", config.Track)
	}

	// 位置引数（アーカイブのパス）
	if fs.NArg() == 0 {
		return nil, fmt.Errorf("archive path is required")
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	config.ArchivePath = fs.Arg(0)

	// 形式が指定されていない場合は拡張子から判定
	switch strings.ToLower(config.Format) {
	case "":
		config.Format = "xmi"
		if strings.EqualFold(filepath.Ext(config.ArchivePath), ".mod") {
			config.Format = "mod"
		}
	case "xmi", "mod":
		config.Format = strings.ToLower(config.Format)
	default:
		return nil, fmt.Errorf("invalid format: %s (must be xmi or mod)", config.Format)
	}
	if config.Pattern == "" {
		config.Pattern = DefaultPattern(config.Format)
	}

	action, err := selectAction(config.Output, dump, play, list)
	if err != nil {
		return nil, err
	}
	config.Action = action

	return config, nil
}

// DefaultPattern returns the track file name pattern used when none is given.
func DefaultPattern(format string) string {
	return "track%02d." + format
}

func selectAction(output string, dump, play, list bool) (Action, error) {
	var actions []Action
	if output != "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".wav", ".mid", ".midi":
		default:
			return 0, fmt.Errorf("unsupported output file: %s (must end in .wav or .mid)", output)
		}
		actions = append(actions, ActionExport)
	}
	if dump {
		actions = append(actions, ActionDump)
	}
	if play {
		actions = append(actions, ActionPlay)
	}
	if list {
		actions = append(actions, ActionList)
	}

	switch len(actions) {
	case 0:
		return ActionDump, nil
	case 1:
		return actions[0], nil
	}
	return 0, fmt.Errorf("only one of --output, --dump, --play, --list may be given")
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string
	terminated := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			terminated = true
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") || boolFlags[name] {
				continue
			}
			// 次の引数を値として扱う（-n 5 のような場合）
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	if terminated {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	io.WriteString(w, `musdec - legacy game music decoder

Usage:
  musdec [options] <archive>

Arguments:
  archive       トラックファイルを含むディレクトリ、または単一のトラックファイル
                (.xmi / .mod)

Options:
  -n, --track <id>            トラック番号（デフォルト: 0）
  --format <xmi|mod>          入力形式（デフォルト: 拡張子から判定、既定は xmi）
  --pattern <pattern>         ファイル名パターン（デフォルト: track%02d.<format>）
  -o, --output <file>         .wav（音声）または .mid（SMF）に書き出す
  --dump                      イベント一覧を標準出力に表示（デフォルト）
  --play                      再生する
  --list                      アーカイブ内のトラック番号を表示
  --soundfont <file>          SoundFont（.sf2）で合成する
  --device <name>             MIDI出力デバイス名（部分一致）
  --no-device                 MIDIデバイスを使わない
  --tuning <legacy|equal>     音程テーブル（デフォルト: legacy）
  -t, --timeout <seconds>     再生を指定秒数で打ち切る（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --log-format <text|json>    ログ形式（デフォルト: text）
  -h, --help                  このヘルプを表示

Environment Variables:
  SOUNDFONT=<file>            SoundFontファイル
  MIDI_DEVICE=<name>          MIDI出力デバイス名
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル

Examples:
  musdec /games/dune/music               track00.xmi のイベントを表示
  musdec -n 3 --play /games/dune/music   トラック3を再生
  musdec -o theme.wav intro.mod          MODをトーン合成してWAVに書き出す
  musdec -n 5 -o song.mid music          トラック5をSMFに変換
`)
}
