package ui

// htmlPage содержит страницу веб-интерфейса
const htmlPage = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="UTF-8">
<title>Распознавание цифр</title>
<style>
    body { font-family: Arial, sans-serif; background: #2c3e50; color: #ecf0f1; margin: 0; padding: 20px; }
    h1 { text-align: center; }
    .container { display: flex; flex-wrap: wrap; justify-content: center; gap: 20px; }
    .panel { background: #34495e; border-radius: 8px; padding: 20px; }
    .panel h2 { margin-top: 0; font-size: 18px; }
    #draw-canvas { background: #000; border: 2px solid #7f8c8d; cursor: crosshair; touch-action: none; }
    #loss-canvas { background: #22303f; border: 1px solid #7f8c8d; }
    button { background: #2980b9; color: #fff; border: none; border-radius: 4px; padding: 8px 16px; margin: 4px; cursor: pointer; font-size: 14px; }
    button:hover { background: #3498db; }
    button:disabled { background: #7f8c8d; cursor: default; }
    input { width: 60px; padding: 4px; border-radius: 4px; border: 1px solid #7f8c8d; }
    #result { font-size: 48px; text-align: center; min-height: 60px; }
    #confidence { text-align: center; color: #bdc3c7; }
    .probs { font-family: monospace; font-size: 12px; white-space: pre; color: #bdc3c7; }
    .status-line { margin: 4px 0; }
</style>
</head>
<body>
<h1>Нейросеть для распознавания цифр</h1>
<div class="container">
    <div class="panel">
        <h2>Нарисуйте цифру</h2>
        <canvas id="draw-canvas" width="280" height="280"></canvas>
        <div>
            <button onclick="recognize()">Распознать</button>
            <button onclick="clearCanvas()">Очистить</button>
        </div>
        <div id="result"></div>
        <div id="confidence"></div>
        <div class="probs" id="probs"></div>
    </div>
    <div class="panel">
        <h2>Обучение</h2>
        <div class="status-line">Эпох: <input type="number" id="epochs" value="5" min="1"></div>
        <div class="status-line">Размер пакета: <input type="number" id="batch" value="32" min="1"></div>
        <div>
            <button id="start-btn" onclick="startTraining()">Начать обучение</button>
            <button id="stop-btn" onclick="stopTraining()" disabled>Остановить</button>
        </div>
        <div class="status-line" id="status">Статус: ...</div>
        <div class="status-line" id="best">Лучшая точность: ...</div>
        <h2>Кривая потерь</h2>
        <canvas id="loss-canvas" width="400" height="200"></canvas>
    </div>
</div>

<script>
const canvas = document.getElementById('draw-canvas');
const ctx = canvas.getContext('2d');
ctx.fillStyle = '#000';
ctx.fillRect(0, 0, canvas.width, canvas.height);
ctx.strokeStyle = '#fff';
ctx.lineWidth = 18;
ctx.lineCap = 'round';

let drawing = false;

function pos(e) {
    const rect = canvas.getBoundingClientRect();
    const src = e.touches ? e.touches[0] : e;
    return { x: src.clientX - rect.left, y: src.clientY - rect.top };
}

canvas.addEventListener('mousedown', e => { drawing = true; const p = pos(e); ctx.beginPath(); ctx.moveTo(p.x, p.y); });
canvas.addEventListener('mousemove', e => { if (!drawing) return; const p = pos(e); ctx.lineTo(p.x, p.y); ctx.stroke(); });
canvas.addEventListener('mouseup', () => drawing = false);
canvas.addEventListener('mouseleave', () => drawing = false);
canvas.addEventListener('touchstart', e => { e.preventDefault(); drawing = true; const p = pos(e); ctx.beginPath(); ctx.moveTo(p.x, p.y); });
canvas.addEventListener('touchmove', e => { e.preventDefault(); if (!drawing) return; const p = pos(e); ctx.lineTo(p.x, p.y); ctx.stroke(); });
canvas.addEventListener('touchend', () => drawing = false);

function clearCanvas() {
    ctx.fillStyle = '#000';
    ctx.fillRect(0, 0, canvas.width, canvas.height);
    document.getElementById('result').textContent = '';
    document.getElementById('confidence').textContent = '';
    document.getElementById('probs').textContent = '';
}

// Сжимаем 280x280 до 28x28, усредняя блоки 10x10
function toPixels() {
    const data = ctx.getImageData(0, 0, 280, 280).data;
    const pixels = new Array(784);
    for (let row = 0; row < 28; row++) {
        for (let col = 0; col < 28; col++) {
            let sum = 0;
            for (let dy = 0; dy < 10; dy++) {
                for (let dx = 0; dx < 10; dx++) {
                    const idx = ((row * 10 + dy) * 280 + col * 10 + dx) * 4;
                    sum += data[idx];
                }
            }
            pixels[row * 28 + col] = sum / (100 * 255);
        }
    }
    return pixels;
}

async function recognize() {
    const resp = await fetch('/api/predict', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ pixels: toPixels() })
    });
    if (!resp.ok) {
        document.getElementById('result').textContent = '?';
        return;
    }
    const res = await resp.json();
    document.getElementById('result').textContent = res.digit;
    document.getElementById('confidence').textContent =
        'Уверенность: ' + (res.confidence * 100).toFixed(1) + '%';
    let lines = '';
    for (let i = 0; i < 10; i++) {
        lines += i + ': ' + '#'.repeat(Math.round(res.probs[i] * 40)) + '\n';
    }
    document.getElementById('probs').textContent = lines;
}

async function startTraining() {
    const epochs = parseInt(document.getElementById('epochs').value);
    const batchSize = parseInt(document.getElementById('batch').value);
    await fetch('/api/train/start', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ epochs: epochs, batchSize: batchSize })
    });
    refresh();
}

async function stopTraining() {
    await fetch('/api/train/stop', { method: 'POST' });
    refresh();
}

function drawLossCurve(history) {
    const c = document.getElementById('loss-canvas');
    const g = c.getContext('2d');
    g.fillStyle = '#22303f';
    g.fillRect(0, 0, c.width, c.height);
    if (history.length < 2) return;

    const losses = history.map(e => e.trainLoss);
    const max = Math.max(...losses);
    const min = Math.min(...losses);
    const range = (max - min) || 1;

    g.strokeStyle = '#e74c3c';
    g.lineWidth = 2;
    g.beginPath();
    for (let i = 0; i < losses.length; i++) {
        const x = 10 + i * (c.width - 20) / (losses.length - 1);
        const y = c.height - 10 - (losses[i] - min) / range * (c.height - 20);
        if (i === 0) g.moveTo(x, y); else g.lineTo(x, y);
    }
    g.stroke();

    g.fillStyle = '#bdc3c7';
    g.font = '11px monospace';
    g.fillText(max.toFixed(3), 4, 12);
    g.fillText(min.toFixed(3), 4, c.height - 2);
}

async function refresh() {
    try {
        const status = await (await fetch('/api/status')).json();
        document.getElementById('status').textContent =
            'Статус: ' + (status.trainRunning ? 'обучение идет' : 'ожидание') +
            ', запусков: ' + status.totalRuns;
        document.getElementById('best').textContent =
            'Лучшая точность: ' + (status.bestAccuracy * 100).toFixed(2) + '%';
        document.getElementById('start-btn').disabled = status.trainRunning || !status.hasDataset;
        document.getElementById('stop-btn').disabled = !status.trainRunning;

        const history = await (await fetch('/api/history')).json();
        drawLossCurve(history || []);
    } catch (e) {
        document.getElementById('status').textContent = 'Статус: нет связи';
    }
}

refresh();
setInterval(refresh, 3000);
</script>
</body>
</html>`
