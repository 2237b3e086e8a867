package service

import (
	"context"

	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"
)

// INodeService is the request-facing side of the canvas. Unlike the store,
// it reports unknown ids as ErrNodeNotFound and keeps the title scheduler
// in step with content edits and deletes.
type INodeService interface {
	Create(ctx context.Context, req *dto.CreateNodeRequest) (*entity.NoteNode, error)
	Show(ctx context.Context, id string) (*dto.NodeResponse, error)
	UpdateContent(ctx context.Context, req *dto.UpdateNodeContentRequest) (*entity.NoteNode, error)
	UpdateTitle(ctx context.Context, req *dto.UpdateNodeTitleRequest) (*entity.NoteNode, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateNodeStatusRequest) (*entity.NoteNode, error)
	Move(ctx context.Context, req *dto.MoveNodeRequest) (*entity.NoteNode, error)
	SetView(ctx context.Context, req *dto.SetNodeViewRequest) (*entity.NoteNode, error)
	Delete(ctx context.Context, id string) error

	Connect(ctx context.Context, req *dto.ConnectNodesRequest) (*entity.Edge, error)
	Disconnect(ctx context.Context, edgeId string) error
}

type nodeService struct {
	store  IGraphStore
	titles ITitleScheduler
}

func NewNodeService(store IGraphStore, titles ITitleScheduler) INodeService {
	return &nodeService{
		store:  store,
		titles: titles,
	}
}

func (c *nodeService) get(id string) (*entity.NoteNode, error) {
	node, found := c.store.Node(id)
	if !found {
		return nil, ErrNodeNotFound
	}
	return &node, nil
}

func (c *nodeService) Create(ctx context.Context, req *dto.CreateNodeRequest) (*entity.NoteNode, error) {
	node, err := c.store.AddNode(ctx, req.Position.ToEntity())
	if err != nil {
		return nil, err
	}

	if req.Content != "" {
		if err := c.store.UpdateNodeContent(ctx, node.Id, req.Content); err != nil {
			return nil, err
		}
		c.titles.Schedule(node.Id)
	}

	return c.get(node.Id)
}

func (c *nodeService) Show(ctx context.Context, id string) (*dto.NodeResponse, error) {
	node, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return &dto.NodeResponse{
		Node:     *node,
		Upstream: c.store.UpstreamNodes(id),
	}, nil
}

func (c *nodeService) UpdateContent(ctx context.Context, req *dto.UpdateNodeContentRequest) (*entity.NoteNode, error) {
	if _, err := c.get(req.Id); err != nil {
		return nil, err
	}

	if err := c.store.UpdateNodeContent(ctx, req.Id, *req.Content); err != nil {
		return nil, err
	}
	c.titles.Schedule(req.Id)

	return c.get(req.Id)
}

func (c *nodeService) UpdateTitle(ctx context.Context, req *dto.UpdateNodeTitleRequest) (*entity.NoteNode, error) {
	if _, err := c.get(req.Id); err != nil {
		return nil, err
	}

	isManual := true
	if req.IsManual != nil {
		isManual = *req.IsManual
	}
	if err := c.store.UpdateNodeTitle(ctx, req.Id, *req.Title, isManual); err != nil {
		return nil, err
	}
	if isManual {
		c.titles.Cancel(req.Id)
	}

	return c.get(req.Id)
}

func (c *nodeService) UpdateStatus(ctx context.Context, req *dto.UpdateNodeStatusRequest) (*entity.NoteNode, error) {
	if _, err := c.get(req.Id); err != nil {
		return nil, err
	}
	if err := c.store.UpdateNodeStatus(ctx, req.Id, req.Status); err != nil {
		return nil, err
	}
	return c.get(req.Id)
}

func (c *nodeService) Move(ctx context.Context, req *dto.MoveNodeRequest) (*entity.NoteNode, error) {
	if _, err := c.get(req.Id); err != nil {
		return nil, err
	}
	if err := c.store.MoveNode(ctx, req.Id, req.Position.ToEntity()); err != nil {
		return nil, err
	}
	return c.get(req.Id)
}

func (c *nodeService) SetView(ctx context.Context, req *dto.SetNodeViewRequest) (*entity.NoteNode, error) {
	if _, err := c.get(req.Id); err != nil {
		return nil, err
	}
	if err := c.store.SetNodeView(ctx, req.Id, req.IsMinimized, req.IsExpanded); err != nil {
		return nil, err
	}
	return c.get(req.Id)
}

func (c *nodeService) Delete(ctx context.Context, id string) error {
	if _, err := c.get(id); err != nil {
		return err
	}
	c.titles.Cancel(id)
	return c.store.DeleteNode(ctx, id)
}

func (c *nodeService) Connect(ctx context.Context, req *dto.ConnectNodesRequest) (*entity.Edge, error) {
	edge, err := c.store.Connect(ctx, req.Source, req.Target)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (c *nodeService) Disconnect(ctx context.Context, edgeId string) error {
	for _, e := range c.store.Edges() {
		if e.Id == edgeId {
			return c.store.Disconnect(ctx, edgeId)
		}
	}
	return ErrEdgeNotFound
}
