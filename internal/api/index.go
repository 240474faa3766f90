package api

// indexHTML shows the window stream and turns browser pointers into touches
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>shotlayout</title>
    <style>
        body {
            margin: 0;
            background: #111;
            color: #ddd;
            font-family: system-ui, -apple-system, sans-serif;
            display: flex;
            gap: 24px;
            padding: 24px;
        }
        #screen {
            touch-action: none;
            user-select: none;
            border: 1px solid #333;
            max-height: calc(100vh - 48px);
        }
        #side { flex: 1; min-width: 240px; }
        button {
            padding: 8px 14px;
            border: none;
            border-radius: 16px;
            background: #3a6ea5;
            color: #fff;
            cursor: pointer;
        }
        .msg { font-size: 13px; margin: 8px 0; padding: 8px; background: #1d1d1d; border-radius: 6px; white-space: pre-wrap; }
        .notice { border-left: 3px solid #ce9178; }
        .share { border-left: 3px solid #4ec9b0; }
        #shots img { width: 80px; margin: 4px; border: 1px solid #333; }
    </style>
</head>
<body>
    <img id="screen" src="/stream" alt="window" draggable="false">
    <div id="side">
        <p>Pull down with three fingers on the window to take a screenshot.</p>
        <button onclick="fetch('/api/gesture/pulldown', {method: 'POST'})">Simulate three finger pull</button>
        <div id="shots"></div>
        <div id="log"></div>
    </div>
    <script>
        const screen = document.getElementById('screen');
        const log = document.getElementById('log');
        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');

        function send(action, e) {
            const r = screen.getBoundingClientRect();
            const sx = screen.naturalWidth / r.width;
            const sy = screen.naturalHeight / r.height;
            ws.send(JSON.stringify({
                type: 'pointer',
                action: action,
                id: e.pointerId,
                x: (e.clientX - r.left) * sx,
                y: (e.clientY - r.top) * sy,
            }));
        }

        screen.addEventListener('pointerdown', e => { screen.setPointerCapture(e.pointerId); send('down', e); });
        screen.addEventListener('pointermove', e => { if (screen.hasPointerCapture(e.pointerId)) send('move', e); });
        screen.addEventListener('pointerup', e => send('up', e));
        screen.addEventListener('pointercancel', e => send('cancel', e));

        function refreshShots() {
            fetch('/api/shots').then(r => r.json()).then(shots => {
                document.getElementById('shots').innerHTML = shots.slice(0, 12)
                    .map(s => '<img src="/api/shots/' + encodeURIComponent(s.name) + '/thumbnail" title="' + s.name + '">')
                    .join('');
            });
        }

        ws.onmessage = ev => {
            const m = JSON.parse(ev.data);
            const div = document.createElement('div');
            div.className = 'msg ' + m.type;
            if (m.type === 'notice') {
                div.textContent = m.notice;
            } else if (m.type === 'share') {
                div.textContent = m.label + '\n' + m.intent.subject + '\n' + m.intent.text;
                refreshShots();
            }
            log.prepend(div);
        };

        refreshShots();
    </script>
</body>
</html>`
