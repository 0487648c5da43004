package escpos

// tableEntry is one row of the static command catalogue: canonical
// mnemonic, audit display name, and how many more bytes a Fixed(n) command
// needs beyond its opcode. Commands whose length policy is not a plain
// fixed count (bit-image, rasters, barcodes, cut modes, horizontal tabs)
// are resolved by dedicated branches in decoder.go instead of this table.
type tableEntry struct {
	mnemonic    string
	displayName string
	fixedLen    int
}

// escCommands holds every ESC (0x1B)-prefixed opcode with a fixed parameter
// count. ESC * and ESC D are handled separately; they are not in this map.
var escCommands = map[byte]tableEntry{
	0x40: {"ESC @", "初始化印表機", 0},
	0x21: {"ESC !", "選擇列印模式", 1},
	0x61: {"ESC a", "選擇對齊方式", 1},
	0x64: {"ESC d", "列印並進紙 n 行", 1},
	0x45: {"ESC E", "選擇加粗模式", 1},
	0x4A: {"ESC J", "列印並進紙 n 點", 1},
	0x32: {"ESC 2", "選擇預設行距", 0},
	0x33: {"ESC 3", "設定行距", 1},
	0x2D: {"ESC -", "底線模式", 1},
	0x4D: {"ESC M", "選擇字型", 1},
	0x24: {"ESC $", "設定絕對列印位置", 2},
	0x74: {"ESC t", "選擇字元碼頁", 1},
	0x52: {"ESC R", "選擇國際字元集", 1},
	0x56: {"ESC V", "選擇旋轉列印", 1},
	0x72: {"ESC r", "選擇列印顏色", 1},
	0x42: {"ESC B", "選擇/取消黑白反轉", 1},
	0x47: {"ESC G", "選擇雙重列印", 1},
	0x70: {"ESC p", "產生錢箱脈衝", 2},
	0x63: {"ESC c", "選擇列印頁模式", 1},
	0x76: {"ESC v", "傳送紙張感測器狀態", 0},
	0x69: {"ESC i", "全切紙", 0},
	0x7B: {"ESC {", "選擇倒置列印", 1},
}

// gsCommands holds every GS (0x1D)-prefixed opcode with a fixed parameter
// count. GS V, GS v 0, GS ( L and GS k each need more than a fixed byte
// count to resolve their length and are handled separately.
var gsCommands = map[byte]tableEntry{
	0x21: {"GS !", "選擇字元大小", 1},
	0x42: {"GS B", "選擇/取消黑白反轉", 1},
	0x48: {"GS H", "選擇 HRI 字元列印位置", 1},
	0x68: {"GS h", "設定條碼高度", 1},
	0x77: {"GS w", "設定條碼寬度", 1},
	0x66: {"GS f", "選擇 HRI 字型", 1},
	0x61: {"GS a", "啟用/停用 ASB", 1},
	0x4C: {"GS L", "設定左邊界", 2},
	0x57: {"GS W", "設定列印區域寬度", 2},
	0x72: {"GS r", "傳送狀態", 1},
	0x49: {"GS I", "傳送印表機 ID", 1},
}

// dleCommands holds every DLE (0x10)-prefixed opcode.
var dleCommands = map[byte]tableEntry{
	0x04: {"DLE EOT", "即時狀態查詢", 1},
	0x14: {"DLE DC4", "即時控制", 3},
	0x05: {"DLE ENQ", "即時請求", 1},
}

// fsCommands holds every FS (0x1C)-prefixed opcode.
var fsCommands = map[byte]tableEntry{
	0x21: {"FS !", "設定中文列印模式", 1},
	0x26: {"FS &", "選擇中文模式", 0},
	0x2E: {"FS .", "取消中文模式", 0},
	0x2D: {"FS -", "中文底線模式", 1},
	0x70: {"FS p", "列印下載點陣圖", 2},
}

// controlChars holds the single-byte commands recognised directly from the
// Idle state, without any prefix.
var controlChars = map[byte]tableEntry{
	0x0A: {"LF", "列印並換行", 0},
	0x0D: {"CR", "歸位", 0},
	0x09: {"HT", "水平定位", 0},
	0x0C: {"FF", "列印並換頁", 0},
}

// cutModeNames describes the GS V mode byte for audit purposes.
var cutModeNames = map[int]string{
	0: "全切", 1: "部分切", 48: "全切", 49: "部分切",
	65: "進紙後全切", 66: "進紙後部分切",
}

// printModeBits describes the individual bits of the ESC ! print-mode byte.
var printModeBits = []struct {
	bit  int
	name string
}{
	{0x01, "Font B"},
	{0x08, "加粗"},
	{0x10, "倍高"},
	{0x20, "倍寬"},
	{0x80, "底線"},
}

var alignmentNames = map[int]string{0: "靠左", 1: "置中", 2: "靠右"}

var underlineModeNames = map[int]string{0: "停用", 1: "一點底線", 2: "二點底線"}

var fontNames = map[int]string{0: "Font A", 1: "Font B", 48: "Font A", 49: "Font B"}

var hriPositionNames = map[int]string{0: "不列印", 1: "上方", 2: "下方", 3: "上下皆列印"}

var internationalCharsetNames = map[int]string{
	0: "美國", 1: "法國", 2: "德國", 3: "英國", 4: "丹麥I",
	5: "瑞典", 6: "義大利", 7: "西班牙I", 8: "日本",
	9: "挪威", 10: "丹麥II", 11: "西班牙II", 12: "拉丁美洲",
	13: "韓國", 15: "中國",
}

var dleEotParamNames = map[int]string{1: "印表機狀態", 2: "離線狀態", 3: "錯誤狀態", 4: "紙張感測器狀態"}

var gsRParamNames = map[int]string{1: "紙張感測器", 2: "錢箱狀態"}

var gsIParamNames = map[int]string{1: "印表機型號", 2: "印表機類型", 3: "韌體版本"}
