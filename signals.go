package shroud

import (
	"context"
	"reflect"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for shroud events.
var (
	SignalModuleCreated      = capitan.NewSignal("shroud.module.created", "Module instantiated")
	SignalProcessorCreated   = capitan.NewSignal("shroud.processor.created", "Processor instantiated")
	SignalPropertyObfuscated = capitan.NewSignal("shroud.property.obfuscated", "Wrapping decoder installed on a property")
	SignalDecodeStart        = capitan.NewSignal("shroud.decode.start", "Decode operation beginning")
	SignalDecodeComplete     = capitan.NewSignal("shroud.decode.complete", "Decode operation finished")
	SignalEncodeStart        = capitan.NewSignal("shroud.encode.start", "Encode operation beginning")
	SignalEncodeComplete     = capitan.NewSignal("shroud.encode.complete", "Encode operation finished")
)

// Keys for typed event data.
var (
	KeyContentType            = capitan.NewStringKey("content_type")
	KeyTypeName               = capitan.NewStringKey("type_name")
	KeyField                  = capitan.NewStringKey("field")
	KeyShape                  = capitan.NewStringKey("shape")
	KeySubject                = capitan.NewStringKey("subject")
	KeySize                   = capitan.NewIntKey("size")
	KeyDuration               = capitan.NewDurationKey("duration")
	KeyError                  = capitan.NewErrorKey("error")
	KeyObfuscatedCount        = capitan.NewIntKey("obfuscated_count")
	KeyObfuscatorDefaults     = capitan.NewIntKey("obfuscator_defaults")
	KeyRepresentationDefaults = capitan.NewIntKey("representation_defaults")
)

// emitModuleCreated emits an event when a module is created.
func emitModuleCreated(ctx context.Context, obfuscators, representations int) {
	capitan.Emit(ctx, SignalModuleCreated,
		KeyObfuscatorDefaults.Field(obfuscators),
		KeyRepresentationDefaults.Field(representations),
	)
}

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, contentType, typeName string, obfuscated int) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyObfuscatedCount.Field(obfuscated),
	)
}

// emitPropertyObfuscated emits an event when a wrapping decoder is installed.
func emitPropertyObfuscated(ctx context.Context, path string, shape Shape, subject reflect.Type) {
	subjectName := ""
	if subject != nil {
		subjectName = subject.String()
	}
	capitan.Emit(ctx, SignalPropertyObfuscated,
		KeyField.Field(path),
		KeyShape.Field(shape.String()),
		KeySubject.Field(subjectName),
	)
}

// emitDecodeStart emits an event when decode begins.
func emitDecodeStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, obfuscated int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyObfuscatedCount.Field(obfuscated),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitEncodeStart emits an event when encode begins.
func emitEncodeStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}
