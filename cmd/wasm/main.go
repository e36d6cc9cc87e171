//go:build js && wasm

package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/inamate/whiteboard/backend-go/internal/collab"
	"github.com/inamate/whiteboard/backend-go/internal/config"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/export"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

var eng *engine.Engine

func main() {
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	eng = engine.NewEngine(cfg, logger)

	// Create the engine API object
	whiteboardEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	whiteboardEngine.Set("loadBoard", js.FuncOf(loadBoard))
	whiteboardEngine.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	whiteboardEngine.Set("setConnectionId", js.FuncOf(setConnectionID))
	whiteboardEngine.Set("setViewport", js.FuncOf(setViewport))
	whiteboardEngine.Set("wheel", js.FuncOf(wheel))
	whiteboardEngine.Set("startInserting", js.FuncOf(startInserting))
	whiteboardEngine.Set("startPencil", js.FuncOf(startPencil))
	whiteboardEngine.Set("startTyping", js.FuncOf(startTyping))
	whiteboardEngine.Set("cancel", js.FuncOf(cancel))
	whiteboardEngine.Set("setPalette", js.FuncOf(setPalette))
	whiteboardEngine.Set("setSelection", js.FuncOf(setSelection))
	whiteboardEngine.Set("pointerDown", js.FuncOf(pointerDown))
	whiteboardEngine.Set("layerPointerDown", js.FuncOf(layerPointerDown))
	whiteboardEngine.Set("resizeHandlePointerDown", js.FuncOf(resizeHandlePointerDown))
	whiteboardEngine.Set("pointerMove", js.FuncOf(pointerMove))
	whiteboardEngine.Set("pointerUp", js.FuncOf(pointerUp))
	whiteboardEngine.Set("pointerLeave", js.FuncOf(pointerLeave))
	whiteboardEngine.Set("deleteSelection", js.FuncOf(deleteSelection))
	whiteboardEngine.Set("setFill", js.FuncOf(setFill))
	whiteboardEngine.Set("updateText", js.FuncOf(updateText))
	whiteboardEngine.Set("bringToFront", js.FuncOf(bringToFront))
	whiteboardEngine.Set("sendToBack", js.FuncOf(sendToBack))
	whiteboardEngine.Set("undo", js.FuncOf(undo))
	whiteboardEngine.Set("redo", js.FuncOf(redo))
	whiteboardEngine.Set("dropImage", js.FuncOf(dropImage))
	whiteboardEngine.Set("setRemotePresence", js.FuncOf(setRemotePresence))
	whiteboardEngine.Set("removeRemotePresence", js.FuncOf(removeRemotePresence))
	whiteboardEngine.Set("applyRemote", js.FuncOf(applyRemote))

	// --- Queries (frontend ← backend) ---
	whiteboardEngine.Set("render", js.FuncOf(render))
	whiteboardEngine.Set("hitTest", js.FuncOf(hitTest))
	whiteboardEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	whiteboardEngine.Set("getSelection", js.FuncOf(getSelection))
	whiteboardEngine.Set("getCanvasState", js.FuncOf(getCanvasState))
	whiteboardEngine.Set("getCamera", js.FuncOf(getCamera))
	whiteboardEngine.Set("getBoard", js.FuncOf(getBoard))
	whiteboardEngine.Set("getPresence", js.FuncOf(getPresence))
	whiteboardEngine.Set("canUndo", js.FuncOf(canUndo))
	whiteboardEngine.Set("canRedo", js.FuncOf(canRedo))
	whiteboardEngine.Set("exportSVG", js.FuncOf(exportSVG))

	// Register on global scope
	js.Global().Set("whiteboardEngine", whiteboardEngine)

	// Signal that WASM is ready
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func okResult() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// batchResult reports a mutation: the applied batch as JSON, if any.
func batchResult(batch *collab.Batch, err error) interface{} {
	if err != nil {
		return errorResult(err.Error())
	}
	if batch == nil {
		return okResult()
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "batch": string(data)})
}

func jsonResult(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(data))
}

func pointerEvent(args []js.Value) (engine.PointerEvent, bool) {
	var ev engine.PointerEvent
	if len(args) < 1 {
		return ev, false
	}
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		slog.Warn("decode pointer event", "error", err)
		return ev, false
	}
	return ev, true
}

// --- Command Handlers ---

func loadBoard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing board JSON")
	}
	if err := eng.LoadBoard([]byte(args[0].String())); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func loadSampleBoard(this js.Value, args []js.Value) interface{} {
	boardID := "board_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		boardID = args[0].String()
	}
	eng.LoadSampleBoard(boardID)
	return okResult()
}

func setConnectionID(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetConnectionID(args[0].Int())
	return nil
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetViewport(args[0].Float(), args[1].Float())
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.Wheel(args[0].Float(), args[1].Float())
	return nil
}

func startInserting(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing layer type")
	}
	if err := eng.StartInserting(document.LayerType(args[0].Int())); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func startPencil(this js.Value, args []js.Value) interface{} {
	eng.StartPencil()
	return nil
}

func startTyping(this js.Value, args []js.Value) interface{} {
	eng.StartTyping()
	return nil
}

func cancel(this js.Value, args []js.Value) interface{} {
	eng.Cancel()
	return nil
}

func setPalette(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing palette JSON")
	}
	var p engine.Palette
	if err := json.Unmarshal([]byte(args[0].String()), &p); err != nil {
		return errorResult(err.Error())
	}
	eng.SetPalette(p)
	return okResult()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	ev, ok := pointerEvent(args)
	if !ok {
		return errorResult("invalid pointer event")
	}
	eng.PointerDown(ev)
	return okResult()
}

func layerPointerDown(this js.Value, args []js.Value) interface{} {
	ev, ok := pointerEvent(args)
	if !ok || len(args) < 2 {
		return errorResult("invalid pointer event")
	}
	if err := eng.LayerPointerDown(ev, args[1].String()); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func resizeHandlePointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing handle")
	}
	if err := eng.ResizeHandlePointerDown(geom.Side(args[0].Int())); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	ev, ok := pointerEvent(args)
	if !ok {
		return errorResult("invalid pointer event")
	}
	return batchResult(eng.PointerMove(ev))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	ev, ok := pointerEvent(args)
	if !ok {
		return errorResult("invalid pointer event")
	}
	return batchResult(eng.PointerUp(ev))
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	eng.PointerLeave()
	return nil
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	return batchResult(eng.DeleteSelection())
}

func setFill(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing color")
	}
	c, err := document.ParseColor(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return batchResult(eng.SetFill(c))
}

func updateText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("missing layer id or value")
	}
	return batchResult(eng.UpdateText(args[0].String(), args[1].String()))
}

func bringToFront(this js.Value, args []js.Value) interface{} {
	return batchResult(eng.BringToFront())
}

func sendToBack(this js.Value, args []js.Value) interface{} {
	return batchResult(eng.SendToBack())
}

func undo(this js.Value, args []js.Value) interface{} {
	return batchResult(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return batchResult(eng.Redo())
}

func dropImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing image bytes")
	}
	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])
	return batchResult(eng.DropImage(data))
}

func setRemotePresence(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("missing connection id or presence")
	}
	var p collab.Presence
	if err := json.Unmarshal([]byte(args[1].String()), &p); err != nil {
		return errorResult(err.Error())
	}
	eng.SetRemotePresence(args[0].Int(), p)
	return okResult()
}

func removeRemotePresence(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.RemoveRemotePresence(args[0].Int())
	return nil
}

func applyRemote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing batch JSON")
	}
	var batch collab.Batch
	if err := json.Unmarshal([]byte(args[0].String()), &batch); err != nil {
		return errorResult(err.Error())
	}
	if err := eng.ApplyRemote(batch); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	bounds, ok := eng.SelectionBounds()
	if !ok {
		return js.ValueOf("null")
	}
	return js.ValueOf(engine.RectToJSON(bounds))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.Selection())
}

func getCanvasState(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.CanvasState())
}

func getCamera(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.Camera())
}

func getBoard(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.Board())
}

func getPresence(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.Presence())
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanRedo())
}

func exportSVG(this js.Value, args []js.Value) interface{} {
	padding := 16.0
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		padding = args[0].Float()
	}
	res, err := export.BoardSVG(eng.Board(), export.Options{Padding: padding, PencilSize: eng.Palette().PencilSize})
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(res.SVG))
}
