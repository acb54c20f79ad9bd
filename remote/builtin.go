package remote

import "github.com/derktes/ir-remote/ir"

// BuiltinID is the id of the built-in factory configuration.
const BuiltinID = "cvte_factory"

// Builtin returns the factory remote configuration used when no default has
// been stored. Each call returns a fresh copy.
func Builtin() Config {
	return Config{
		ID:        BuiltinID,
		Name:      "CVTE工厂遥控器",
		Protocol:  ir.ProtocolNEC,
		Header:    DefaultHeader,
		IsDefault: true,
		Keys: Catalog{
			{"KEY_POWER", 0x0001, "电源", CategoryFunction},

			{"KEY_0", 0x0010, "0", CategoryNumber},
			{"KEY_1", 0x0002, "1", CategoryNumber},
			{"KEY_2", 0x0012, "2", CategoryNumber},
			{"KEY_3", 0x0006, "3", CategoryNumber},
			{"KEY_4", 0x0016, "4", CategoryNumber},
			{"KEY_5", 0x0003, "5", CategoryNumber},
			{"KEY_6", 0x0013, "6", CategoryNumber},
			{"KEY_7", 0x0007, "7", CategoryNumber},
			{"KEY_8", 0x0017, "8", CategoryNumber},
			{"KEY_9", 0x0000, "9", CategoryNumber},

			{"KEY_UP", 0x0056, "▲", CategoryDirection},
			{"KEY_DOWN", 0x0050, "▼", CategoryDirection},
			{"KEY_LEFT", 0x0047, "◄", CategoryDirection},
			{"KEY_RIGHT", 0x004b, "►", CategoryDirection},
			{"KEY_ENTER", 0x0057, "确认", CategoryDirection},

			{"KEY_VOLUMEUP", 0x0044, "音量+", CategoryVolume},
			{"KEY_VOLUMEDOWN", 0x0045, "音量-", CategoryVolume},
			{"KEY_CHANNELUP", 0x0048, "频道+", CategoryChannel},
			{"KEY_CHANNELDOWN", 0x0049, "频道-", CategoryChannel},
			{"KEY_MUTE", 0x0011, "静音", CategoryVolume},

			{"KEY_MENU", 0x0046, "菜单", CategoryFunction},
			{"KEY_BACK", 0x004a, "返回", CategoryFunction},
			{"KEY_HOME", 0x004c, "主页", CategoryFunction},
			{"KEY_INFO", 0x0005, "信息", CategoryFunction},
			{"KEY_SUBTITLE", 0x0041, "字幕", CategoryFunction},
			{"KEY_HELP", 0x004d, "帮助", CategoryFunction},
			{"KEY_ZOOM", 0x0051, "缩放", CategoryFunction},
			{"KEY_RECORD", 0x0059, "录制", CategoryFunction},
			{"KEY_MEDIA", 0x0009, "媒体", CategoryFunction},
			{"KEY_DIRECTION", 0x000d, "画面模式", CategoryFunction},
			{"KEY_FN_F1", 0x0055, "MTS", CategoryFunction},
			{"KEY_KP1", 0x0040, "KP1", CategoryFunction},

			{"KEY_RED", 0x001d, "红", CategoryColor},
			{"KEY_GREEN", 0x001e, "绿", CategoryColor},
			{"KEY_YELLOW", 0x001f, "黄", CategoryColor},
			{"KEY_BLUE", 0x001c, "蓝", CategoryColor},

			{"KEY_FN_F", 0x0008, "FAC复位", CategoryFactory},
			{"KEY_FN_E", 0x0018, "工厂菜单", CategoryFactory},
			{"KEY_F13", 0x000a, "自动调台", CategoryFactory},
			{"KEY_PROG3", 0x000b, "老化测试", CategoryFactory},
			{"KEY_F14", 0x000e, "版本号", CategoryFactory},
			{"KEY_F15", 0x00a2, "清除HDCP", CategoryFactory},
			{"KEY_F16", 0x00a3, "清除MAC", CategoryFactory},
			{"KEY_F17", 0x00a4, "清除CIPLUS", CategoryFactory},
			{"KEY_F1", 0x0004, "F1", CategoryFactory},
			{"KEY_F1_ALT", 0x0014, "F1备用", CategoryFactory},
			{"KEY_FN_B", 0x000f, "FN_B", CategoryFactory},
			{"KEY_TOUCHPAD_TOGGLE", 0x000c, "触控切换", CategoryFactory},
			{"KEY_BRL_DOT2", 0x0019, "ADC校准", CategoryFactory},
		},
	}
}
