/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package usb

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/vmusb/pkg/domain"
	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/carverauto/vmusb/pkg/store"
)

const (
	opAttach = "attach"
	opDetach = "detach"

	tracerName = "github.com/carverauto/vmusb/pkg/usb"
)

// Manager attaches, detaches and lists USB devices of running VMs. The
// store is the only state shared between operations.
type Manager struct {
	store      store.Store
	domains    DomainInfo
	dispatcher *Dispatcher
	writer     *Writer
	logger     logger.Logger
	tracer     trace.Tracer
}

// NewManager wires a Manager over s. Device hot-plug for qemu-xen goes
// through dm.
func NewManager(s store.Store, domains DomainInfo, dm DeviceModel, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Manager{
		store:      s,
		domains:    domains,
		dispatcher: NewDispatcher(domains, dm, log),
		writer:     NewWriter(s, log),
		logger:     log,
		tracer:     logger.GetTracer(tracerName),
	}
}

// Add attaches desc to domid. It returns immediately; done, if not nil, is
// called exactly once with the result before the operation's Done channel
// closes.
func (m *Manager) Add(ctx context.Context, domid uint32, desc Descriptor, done func(error)) *Operation {
	return m.start(ctx, opAttach, domid, desc, done, m.attach)
}

// Remove detaches desc from domid with the same completion contract as Add.
func (m *Manager) Remove(ctx context.Context, domid uint32, desc Descriptor, done func(error)) *Operation {
	return m.start(ctx, opDetach, domid, desc, done, m.detach)
}

// List returns the devices assigned to domid. A VM without devices yields
// an empty, non-nil slice.
func (m *Manager) List(ctx context.Context, domid uint32) ([]Descriptor, error) {
	records, err := ListAssigned(ctx, m.store, domid)
	if err != nil {
		return nil, err
	}

	descs := make([]Descriptor, 0, len(records))
	for _, rec := range records {
		descs = append(descs, ToExternal(rec))
	}

	return descs, nil
}

type workflow func(ctx context.Context, log zerolog.Logger, rec *Record) error

func (m *Manager) start(ctx context.Context, kind string, domid uint32, desc Descriptor,
	done func(error), run workflow) *Operation {
	op := newOperation(kind, domid, done)

	attrs := []attribute.KeyValue{
		attribute.String("op_id", op.ID()),
		attribute.Int64("domid", int64(domid)),
	}

	if desc.Device != nil {
		attrs = append(attrs, attribute.String("device", desc.Device.String()))
	}

	ctx, span := m.tracer.Start(ctx, "usb."+kind, trace.WithAttributes(attrs...))

	logCtx := m.logger.With().
		Str("op", kind).
		Str("op_id", op.ID()).
		Uint32("domid", domid)

	if desc.Device != nil {
		logCtx = logCtx.Str("device", desc.Device.String())
	}

	if sc := span.SpanContext(); sc.IsValid() {
		logCtx = logCtx.Str("trace_id", sc.TraceID().String())
	}

	log := logCtx.Logger()

	go func() {
		err := m.run(ctx, log, domid, desc, run)
		if err != nil {
			log.Error().Err(err).Msg("USB operation failed")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			log.Info().Msg("USB operation completed")
		}

		span.End()
		op.complete(err)
	}()

	return op
}

func (m *Manager) run(ctx context.Context, log zerolog.Logger, domid uint32, desc Descriptor, wf workflow) error {
	enterState(ctx, log, "validate")

	rec, err := m.validate(ctx, domid, desc)
	if err != nil {
		return err
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("protocol", rec.Protocol.String()))

	return wf(ctx, log.With().Str("protocol", rec.Protocol.String()).Logger(), rec)
}

// enterState marks a workflow transition in the log and on the span.
func enterState(ctx context.Context, log zerolog.Logger, state string) {
	log.Debug().Msg("state: " + state)
	trace.SpanFromContext(ctx).AddEvent(state)
}

// validate resolves desc into a record and rejects requests that cannot be
// carried out, before any side effect.
func (m *Manager) validate(ctx context.Context, domid uint32, desc Descriptor) (*Record, error) {
	if desc.Device == nil {
		return nil, fmt.Errorf("%w: no device given", ErrValidation)
	}

	kind, err := m.domains.Kind(ctx, domid)
	if err != nil {
		return nil, domainError(domid, err)
	}

	helper, err := m.domains.HelperDomID(ctx, domid)
	if err != nil {
		return nil, domainError(domid, err)
	}

	rec := ToInternal(desc, domid, helper)
	rec.Protocol = ResolveProtocol(rec.Protocol, kind)

	if !m.dispatcher.Routable(rec.Protocol) {
		return nil, fmt.Errorf("%w: protocol %s cannot be used for %s domain %d",
			ErrValidation, rec.Protocol, kind, domid)
	}

	if rec.DMDomID != 0 {
		return nil, fmt.Errorf("%w: domain %d runs its device model in stub domain %d",
			ErrValidation, domid, rec.DMDomID)
	}

	return rec, nil
}

func domainError(domid uint32, err error) error {
	if errors.Is(err, domain.ErrNotRegistered) || errors.Is(err, domain.ErrUnknownKind) {
		return fmt.Errorf("%w: domain %d: %w", ErrValidation, domid, err)
	}

	return fmt.Errorf("%w: domain %d: %w", ErrStore, domid, err)
}

func (m *Manager) attach(ctx context.Context, log zerolog.Logger, rec *Record) error {
	enterState(ctx, log, "conflict check")

	assigned, err := ListAssigned(ctx, m.store, rec.TargetDomID)
	if err != nil {
		return err
	}

	if IsMember(assigned, rec) {
		return fmt.Errorf("%w: %s already assigned to domain %d", ErrConflict, rec.Device, rec.TargetDomID)
	}

	enterState(ctx, log, "dispatch")

	if err := m.dispatcher.Execute(ctx, rec.Protocol, ActionAdd, rec); err != nil {
		return err
	}

	enterState(ctx, log, "persist")

	// The device is plugged from here on; the record must follow even if
	// the caller gives up.
	return m.writer.Persist(context.WithoutCancel(ctx), rec.TargetDomID, rec)
}

func (m *Manager) detach(ctx context.Context, log zerolog.Logger, rec *Record) error {
	enterState(ctx, log, "membership check")

	assigned, err := ListAssigned(ctx, m.store, rec.TargetDomID)
	if err != nil {
		return err
	}

	if !IsMember(assigned, rec) {
		return fmt.Errorf("%w: %s is not assigned to domain %d", ErrConflict, rec.Device, rec.TargetDomID)
	}

	enterState(ctx, log, "dispatch")

	if err := m.dispatcher.Execute(ctx, rec.Protocol, ActionRemove, rec); err != nil {
		return err
	}

	enterState(ctx, log, "unpersist")

	if err := m.writer.Unpersist(context.WithoutCancel(ctx), rec.TargetDomID, rec); err != nil {
		return fmt.Errorf("device unplugged but its record remains: %w", err)
	}

	return nil
}
