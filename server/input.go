package server

import (
	"encoding/json"
	"fmt"

	"hordearena/game"
	"hordearena/protocol"
)

// decodeInput 将 game-data.data 转换为模拟层的输入意图
// 示例：{"type":"move","dx":1,"dy":0,"deltaTime":0.016}
func decodeInput(typ string, data json.RawMessage) (game.Input, error) {
	switch typ {
	case "move":
		return protocol.DecodeData[game.Move](data)
	case "attack":
		return protocol.DecodeData[game.Attack](data)
	case "use_ultimate":
		return game.UseUltimate{}, nil
	case "config":
		return protocol.DecodeData[game.Config](data)
	case "map":
		return protocol.DecodeData[game.MapInfo](data)
	case "world-size":
		return protocol.DecodeData[game.WorldSize](data)
	case "obstacles":
		return protocol.DecodeData[game.Obstacles](data)
	case "decorations":
		return protocol.DecodeData[game.Decorations](data)
	case "new-session":
		return game.NewSession{}, nil
	case "try_collect_chest":
		return protocol.DecodeData[game.TryCollectChest](data)
	case "award_exp":
		return protocol.DecodeData[game.AwardExp](data)
	}
	return nil, fmt.Errorf("unknown game-data type %q", typ)
}
