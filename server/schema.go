package server

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"

	"hordearena/game"
	"hordearena/protocol"
)

// inboundMessages 汇总所有入站消息结构，供客户端生成校验器
type inboundMessages struct {
	Envelope        protocol.ClientMessage `json:"envelope"`
	Move            game.Move              `json:"move"`
	Attack          game.Attack            `json:"attack"`
	Config          game.Config            `json:"config"`
	Map             game.MapInfo           `json:"map"`
	WorldSize       game.WorldSize         `json:"world-size"`
	Obstacles       game.Obstacles         `json:"obstacles"`
	Decorations     game.Decorations       `json:"decorations"`
	TryCollectChest game.TryCollectChest   `json:"try_collect_chest"`
	AwardExp        game.AwardExp          `json:"award_exp"`
}

var (
	schemaOnce sync.Once
	schemaDoc  *jsonschema.Schema
)

// InboundSchema 反射生成入站消息的 JSON Schema（只生成一次）
func InboundSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			DoNotReference:             true,
		}
		schemaDoc = reflector.Reflect(&inboundMessages{})
		schemaDoc.Title = "HordeArena inbound messages"
		schemaDoc.Description = "join/game-data envelope and every game-data payload, keyed by data.type"
	})
	return schemaDoc
}

// HandleSchema GET /schema
func HandleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InboundSchema())
}
