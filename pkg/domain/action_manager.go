package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type ActionFunc func(ctx context.Context, params IntegrationInput) (IntegrationOutput, error)
type ActionFuncPerItem func(ctx context.Context, params IntegrationInput, item Item) (Item, error)
type ActionFuncPerItemMulti func(ctx context.Context, params IntegrationInput, item Item) ([]Item, error)

type IntegrationActionManager struct {
	mtx                     sync.RWMutex
	actionFuncs             map[IntegrationActionType]ActionFunc
	actionFuncsPerItem      map[IntegrationActionType]ActionFuncPerItem
	actionFuncsPerItemMulti map[IntegrationActionType]ActionFuncPerItemMulti
}

func NewIntegrationActionManager() *IntegrationActionManager {
	return &IntegrationActionManager{
		actionFuncs:             make(map[IntegrationActionType]ActionFunc),
		actionFuncsPerItem:      make(map[IntegrationActionType]ActionFuncPerItem),
		actionFuncsPerItemMulti: make(map[IntegrationActionType]ActionFuncPerItemMulti),
	}
}

func (m *IntegrationActionManager) Add(actionType IntegrationActionType, actionFunc ActionFunc) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.actionFuncs[actionType] = actionFunc

	return m
}

func (m *IntegrationActionManager) Get(actionType IntegrationActionType) (ActionFunc, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionFunc, ok := m.actionFuncs[actionType]
	return actionFunc, ok
}

func (m *IntegrationActionManager) AddPerItem(actionType IntegrationActionType, actionFunc ActionFuncPerItem) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.actionFuncsPerItem[actionType] = actionFunc

	return m
}

func (m *IntegrationActionManager) AddPerItemMulti(actionType IntegrationActionType, actionFunc ActionFuncPerItemMulti) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.actionFuncsPerItemMulti[actionType] = actionFunc

	return m
}

func (m *IntegrationActionManager) GetPerItem(actionType IntegrationActionType) (ActionFuncPerItem, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionFunc, ok := m.actionFuncsPerItem[actionType]
	return actionFunc, ok
}

func (m *IntegrationActionManager) GetPerItemMulti(actionType IntegrationActionType) (ActionFuncPerItemMulti, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionFunc, ok := m.actionFuncsPerItemMulti[actionType]
	return actionFunc, ok
}

func (m *IntegrationActionManager) Run(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	if _, ok := m.GetPerItem(actionType); ok {
		return m.RunPerItem(ctx, actionType, params)
	}

	if _, ok := m.GetPerItemMulti(actionType); ok {
		return m.RunPerItemMulti(ctx, actionType, params)
	}

	actionFunc, ok := m.Get(actionType)
	if !ok {
		return IntegrationOutput{}, fmt.Errorf("action not found")
	}

	return actionFunc(ctx, params)
}

func (m *IntegrationActionManager) RunPerItem(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	actionFuncPerItem, ok := m.GetPerItem(actionType)
	if !ok {
		return IntegrationOutput{}, fmt.Errorf("action not found")
	}

	allItems, err := params.GetAllItems()
	if err != nil {
		return IntegrationOutput{}, err
	}

	outputs := make([]Item, 0)

	for _, item := range allItems {
		output, err := actionFuncPerItem(ctx, params, item)
		if err != nil {
			return IntegrationOutput{}, err
		}

		if output == nil {
			continue
		}

		if array, isArray := output.([]any); isArray {
			if len(array) == 0 {
				continue
			}
		}

		if object, isObject := output.(map[string]any); isObject {
			if len(object) == 0 {
				continue
			}
		}

		outputs = append(outputs, output)
	}

	resultJSON, err := json.Marshal(outputs)
	if err != nil {
		return IntegrationOutput{}, err
	}

	return IntegrationOutput{
		ResultJSONByOutputID: []Payload{
			resultJSON,
		},
	}, nil
}

func (m *IntegrationActionManager) RunPerItemMulti(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	actionFuncPerItemMulti, ok := m.GetPerItemMulti(actionType)
	if !ok {
		return IntegrationOutput{}, fmt.Errorf("action not found")
	}

	allItems, err := params.GetAllItems()
	if err != nil {
		return IntegrationOutput{}, err
	}

	outputs := make([]Item, 0)

	for _, item := range allItems {
		outputItems, err := actionFuncPerItemMulti(ctx, params, item)
		if err != nil {
			return IntegrationOutput{}, err
		}

		for _, outputItem := range outputItems {
			if outputItem == nil {
				continue
			}

			if object, isObject := outputItem.(map[string]any); isObject {
				if len(object) == 0 {
					continue
				}
			}

			outputs = append(outputs, outputItem)
		}
	}

	resultJSON, err := json.Marshal(outputs)
	if err != nil {
		return IntegrationOutput{}, err
	}

	return IntegrationOutput{
		ResultJSONByOutputID: []Payload{
			resultJSON,
		},
	}, nil
}
